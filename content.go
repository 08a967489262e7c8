package pubfeed

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/eringen/pubfeed/metrics"
)

// ContentTransformer turns a post's Markdown body into HTML that is safe to
// embed in the feed.
type ContentTransformer interface {
	Transform(markdown string) (string, error)
}

// renderContents transforms every post body concurrently, at most workers at
// a time. The result is index-aligned with posts. A post whose transform
// fails or panics gets an empty body and a warning; its siblings are not
// affected.
func renderContents(posts []Post, t ContentTransformer, workers int, logger *slog.Logger, rec metrics.Recorder) []string {
	out := make([]string, len(posts))
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, p := range posts {
		wg.Add(1)
		go func(i int, p Post) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			html, err := transformBody(t, p.Body)
			if err != nil {
				logger.Warn("Post content degraded to empty", logPostID(p.ID), logError(err))
				rec.IncRenderFailure()
				return
			}
			out[i] = html
		}(i, p)
	}
	wg.Wait()
	return out
}

func transformBody(t ContentTransformer, body string) (html string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()
	return t.Transform(body)
}
