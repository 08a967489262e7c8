package pubfeed

import "time"

// Post is a single authored entry as yielded by a PostSource.
// The pipeline never mutates posts.
type Post struct {
	ID          string     // unique slug, used for the canonical path
	Title       string
	Description string
	PubDatetime time.Time  // required
	ModDatetime *time.Time // optional, supersedes PubDatetime when set
	Tags        []string
	OGImage     string // filename relative to the post path, or an absolute URL
	Body        string // raw markdown
	Draft       bool
}

// EffectiveDate returns ModDatetime when set, otherwise PubDatetime.
func (p Post) EffectiveDate() time.Time {
	if p.ModDatetime != nil && !p.ModDatetime.IsZero() {
		return *p.ModDatetime
	}
	return p.PubDatetime
}

// TagEntry pairs a URL-safe tag slug with the display name it was first seen as.
type TagEntry struct {
	Tag     string
	TagName string
}
