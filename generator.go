package pubfeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eringen/pubfeed/markdown"
	"github.com/eringen/pubfeed/metrics"
)

// Artifact file names. They double as the HTTP route paths.
const (
	ArtifactRSS             = "rss.xml"
	ArtifactSitemapIndex    = "sitemap-index.xml"
	ArtifactSitemapCombined = "sitemap-0.xml"
	ArtifactSitemapMaster   = "sitemap-master.xml"
	ArtifactSitemapPosts    = "sitemap-posts.xml"
	ArtifactSitemapTags     = "sitemap-tags.xml"
	ArtifactRobots          = "robots.txt"
)

const (
	MIMEApplicationRSS = "application/rss+xml; charset=utf-8"
	MIMEApplicationXML = "application/xml; charset=utf-8"
	MIMETextPlain      = "text/plain; charset=utf-8"
)

// ErrUnknownArtifact is returned by Build for a name not in Artifacts.
var ErrUnknownArtifact = errors.New("unknown artifact")

// Artifact describes one discovery document the Generator can produce.
type Artifact struct {
	Name        string
	ContentType string
	build       func(g *Generator, ctx context.Context) ([]byte, error)
}

var artifacts = []Artifact{
	{ArtifactRSS, MIMEApplicationRSS, (*Generator).Feed},
	{ArtifactSitemapIndex, MIMEApplicationXML, (*Generator).SitemapIndex},
	{ArtifactSitemapCombined, MIMEApplicationXML, (*Generator).Sitemap},
	{ArtifactSitemapMaster, MIMEApplicationXML, (*Generator).Sitemap},
	{ArtifactSitemapPosts, MIMEApplicationXML, (*Generator).PostsSitemap},
	{ArtifactSitemapTags, MIMEApplicationXML, (*Generator).TagsSitemap},
	{ArtifactRobots, MIMETextPlain, (*Generator).Robots},
}

// Artifacts lists every artifact in a fixed order.
func Artifacts() []Artifact {
	return append([]Artifact(nil), artifacts...)
}

func lookupArtifact(name string) (Artifact, bool) {
	for _, a := range artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// Generator produces the discovery artifacts from a PostSource. Every call
// re-reads the source and recomputes from scratch; a Generator holds no
// derived state and is safe for concurrent use.
type Generator struct {
	cfg         SiteConfig
	source      PostSource
	transformer ContentTransformer
	now         func() time.Time
	logger      *slog.Logger
	recorder    metrics.Recorder
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithTransformer replaces the Markdown-to-HTML transformer used for feed content.
func WithTransformer(t ContentTransformer) GeneratorOption {
	return func(g *Generator) {
		g.transformer = t
	}
}

// WithClock replaces time.Now, mainly for reproducible output in tests.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = l
	}
}

// WithRecorder sets the metrics recorder (default metrics.NoopRecorder).
func WithRecorder(r metrics.Recorder) GeneratorOption {
	return func(g *Generator) {
		g.recorder = r
	}
}

// NewGenerator returns a Generator for cfg reading posts from src.
func NewGenerator(cfg SiteConfig, src PostSource, opts ...GeneratorOption) *Generator {
	cfg.setDefaults()
	g := &Generator{
		cfg:         cfg,
		source:      src,
		transformer: markdown.NewTransformer(),
		now:         time.Now,
		logger:      slog.Default(),
		recorder:    metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the normalized site configuration.
func (g *Generator) Config() SiteConfig {
	return g.cfg
}

// Posts lists, validates and filters the collection. The result is the same
// list every artifact of one build is derived from.
func (g *Generator) Posts(ctx context.Context, now time.Time) ([]Post, error) {
	posts, err := g.source.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if err := ValidatePosts(posts); err != nil {
		return nil, err
	}
	posts = FilterPublished(posts, now, g.cfg.ScheduledPostMargin)
	g.recorder.SetPostCount(len(posts))
	return posts, nil
}

// Feed builds rss.xml.
func (g *Generator) Feed(ctx context.Context) ([]byte, error) {
	now := g.now()
	posts, err := g.Posts(ctx, now)
	if err != nil {
		return nil, err
	}
	contents := renderContents(posts, g.transformer, g.cfg.RenderWorkers, g.logger, g.recorder)
	return BuildFeed(g.cfg, posts, contents, now)
}

// SitemapIndex builds sitemap-index.xml.
func (g *Generator) SitemapIndex(ctx context.Context) ([]byte, error) {
	now := g.now()
	posts, err := g.Posts(ctx, now)
	if err != nil {
		return nil, err
	}
	return BuildSitemapIndex(g.cfg, posts, now)
}

// Sitemap builds the combined sitemap.
func (g *Generator) Sitemap(ctx context.Context) ([]byte, error) {
	now := g.now()
	posts, err := g.Posts(ctx, now)
	if err != nil {
		return nil, err
	}
	return BuildSitemap(g.cfg, posts, now)
}

// PostsSitemap builds sitemap-posts.xml.
func (g *Generator) PostsSitemap(ctx context.Context) ([]byte, error) {
	posts, err := g.Posts(ctx, g.now())
	if err != nil {
		return nil, err
	}
	return BuildPostsSitemap(g.cfg, posts)
}

// TagsSitemap builds sitemap-tags.xml.
func (g *Generator) TagsSitemap(ctx context.Context) ([]byte, error) {
	now := g.now()
	posts, err := g.Posts(ctx, now)
	if err != nil {
		return nil, err
	}
	return BuildTagsSitemap(g.cfg, posts, now)
}

// Robots builds robots.txt. It never reads the post source.
func (g *Generator) Robots(context.Context) ([]byte, error) {
	return BuildRobots(g.cfg), nil
}

// Build produces the named artifact and records its outcome.
func (g *Generator) Build(ctx context.Context, name string) ([]byte, error) {
	a, ok := lookupArtifact(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArtifact, name)
	}
	start := time.Now()
	body, err := a.build(g, ctx)
	elapsed := time.Since(start)
	g.recorder.ObserveArtifactDuration(name, elapsed)
	if err != nil {
		g.recorder.IncArtifactResult(name, metrics.ResultFailure)
		g.logger.Error("Artifact build failed", logArtifact(name), logError(err))
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	g.recorder.IncArtifactResult(name, metrics.ResultSuccess)
	g.logger.Debug("Artifact built", logArtifact(name), logDurationMS(float64(elapsed.Microseconds())/1000))
	return body, nil
}

// WriteAll builds every artifact from one read of the source and one clock
// reading, then writes each to dir under its artifact name. Nothing is
// written unless every artifact builds, and each file is replaced by rename,
// so dir never mixes artifacts from different builds.
func (g *Generator) WriteAll(ctx context.Context, dir string) error {
	posts, err := g.source.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	now := g.now()
	snap := *g
	snap.source = StaticSource(posts)
	snap.now = func() time.Time { return now }

	bodies := make([][]byte, len(artifacts))
	errs := make([]error, len(artifacts))
	var wg sync.WaitGroup
	for i, a := range artifacts {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			bodies[i], errs[i] = snap.Build(ctx, name)
		}(i, a.Name)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for i, a := range artifacts {
		if err := writeFileAtomic(dir, a.Name, bodies[i]); err != nil {
			errs[i] = fmt.Errorf("write %s: %w", a.Name, err)
		}
	}
	return errors.Join(errs...)
}

// writeFileAtomic writes data to a temporary file in dir and renames it over
// name, so readers see either the old file or the new one.
func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, name))
}
