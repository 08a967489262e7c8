package pubfeed

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

var (
	// ErrMissingID marks a post without an id; no canonical URL can be built.
	ErrMissingID = errors.New("post id is empty")
	// ErrInvalidID marks an id that cannot be placed under posts/ as-is: an
	// empty, "." or ".." path segment would move the URL elsewhere on the site.
	ErrInvalidID = errors.New("post id has an empty or dot path segment")
	// ErrDuplicateID marks two posts sharing one id.
	ErrDuplicateID = errors.New("duplicate post id")
	// ErrMissingPubDatetime marks a post without its required publication time.
	ErrMissingPubDatetime = errors.New("pubDatetime is required")
)

// ValidatePosts checks the properties the builders rely on. Any violation is
// fatal for the build; optional fields are never checked here.
func ValidatePosts(posts []Post) error {
	ids := make(map[string]struct{}, len(posts))
	for i, p := range posts {
		if p.ID == "" {
			return fmt.Errorf("post #%d (%q): %w", i, p.Title, ErrMissingID)
		}
		if !validID(p.ID) {
			return fmt.Errorf("post %q: %w", p.ID, ErrInvalidID)
		}
		if _, ok := ids[p.ID]; ok {
			return fmt.Errorf("post %q: %w", p.ID, ErrDuplicateID)
		}
		ids[p.ID] = struct{}{}
		if p.PubDatetime.IsZero() {
			return fmt.Errorf("post %q: %w", p.ID, ErrMissingPubDatetime)
		}
	}
	return nil
}

// validID reports whether id is one or more "/"-separated segments, none of
// them empty, "." or "..".
func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, seg := range strings.Split(id, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
