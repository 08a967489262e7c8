// Package markdown turns author-written Markdown into HTML that is safe to
// embed in a feed consumed by third-party readers.
package markdown

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to HTML using goldmark with the GFM extensions.
// Raw HTML in the source is passed through untouched; callers must run the
// output through a Sanitizer before handing it to anyone.
type Renderer struct {
	pool sync.Pool
}

// NewRenderer returns a Renderer safe for concurrent use.
func NewRenderer() *Renderer {
	r := &Renderer{}
	r.pool.New = func() any {
		return goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		)
	}
	return r
}

// Render returns the HTML rendering of src.
func (r *Renderer) Render(src string) (string, error) {
	md := r.pool.Get().(goldmark.Markdown)
	defer r.pool.Put(md)

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Transformer renders Markdown and sanitizes the result.
type Transformer struct {
	renderer  *Renderer
	sanitizer *Sanitizer
}

// NewTransformer returns a Transformer with the default renderer and sanitizer.
func NewTransformer() *Transformer {
	return &Transformer{
		renderer:  NewRenderer(),
		sanitizer: NewSanitizer(),
	}
}

// Transform renders src to HTML and strips anything unsafe from it.
func (t *Transformer) Transform(src string) (string, error) {
	rendered, err := t.renderer.Render(src)
	if err != nil {
		return "", err
	}
	return t.sanitizer.Sanitize(rendered)
}
