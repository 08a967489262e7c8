package pubfeed

import (
	"context"
	"sync"
	"time"
)

// PostCache wraps a PostSource and keeps the last listing for ttl. A zero ttl
// disables caching.
type PostCache struct {
	mu      sync.RWMutex
	posts   []Post
	fetched time.Time
	ttl     time.Duration
	source  PostSource
	now     func() time.Time
}

// NewPostCache creates a PostCache backed by the given source.
func NewPostCache(src PostSource, ttl time.Duration) *PostCache {
	return &PostCache{source: src, ttl: ttl, now: time.Now}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// ListPosts returns the cached listing, reloading it from the source when
// stale. The returned slice must not be modified.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ListPosts(ctx context.Context) ([]Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	posts, err := c.source.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}
	c.posts = posts
	c.fetched = c.now()
	return posts, nil
}
