package pubfeed

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SlugifyTag converts a raw tag into its URL-safe slug. Letters and digits of
// every script are kept, so non-Latin tags do not collapse into an empty slug.
func SlugifyTag(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	s = cases.Lower(language.Und).String(s)
	var b strings.Builder
	pendingDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// UniqueTags returns one entry per distinct tag slug across posts, sorted by
// slug. When several raw tags share a slug, the display name seen first wins,
// walking posts in SortPosts order and each post's tags in their listed order.
// Tags that slugify to the empty string are skipped.
func UniqueTags(posts []Post) []TagEntry {
	seen := make(map[string]string)
	for _, p := range SortPosts(posts) {
		for _, raw := range p.Tags {
			slug := SlugifyTag(raw)
			if slug == "" {
				continue
			}
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = strings.TrimSpace(raw)
		}
	}
	entries := make([]TagEntry, 0, len(seen))
	for slug, name := range seen {
		entries = append(entries, TagEntry{Tag: slug, TagName: name})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Tag < entries[j].Tag
	})
	return entries
}

// postCategories returns the post's tags with blanks and in-post duplicates
// removed, keeping the spelling of the first occurrence. Duplicates are
// compared case-insensitively on the trimmed name, so tags that differ only
// in punctuation ("C", "C#", "C++") are all kept.
func postCategories(p Post) []string {
	var out []string
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(p.Tags))
	for _, raw := range p.Tags {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := fold.String(norm.NFKC.String(name))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
