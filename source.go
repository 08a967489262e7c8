package pubfeed

import "context"

// PostSource yields the full post collection. Implementations own all I/O;
// the pipeline only reads what they return.
type PostSource interface {
	ListPosts(ctx context.Context) ([]Post, error)
}

// StaticSource serves a fixed in-memory post list.
type StaticSource []Post

// ListPosts returns a copy of the list.
func (s StaticSource) ListPosts(context.Context) ([]Post, error) {
	return append([]Post(nil), s...), nil
}

// SourceFunc adapts a function to PostSource.
type SourceFunc func(ctx context.Context) ([]Post, error)

// ListPosts calls f.
func (f SourceFunc) ListPosts(ctx context.Context) ([]Post, error) {
	return f(ctx)
}
