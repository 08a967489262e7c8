package pubfeed

import (
	"sort"
	"time"
)

// SortPosts returns a copy of posts ordered by effective date, newest first.
// Posts with the same effective date are ordered by ID ascending so the result
// does not depend on the order the source returned them in.
func SortPosts(posts []Post) []Post {
	sorted := make([]Post, 0, len(posts))
	for _, i := range sortOrder(posts) {
		sorted = append(sorted, posts[i])
	}
	return sorted
}

// sortOrder returns the indexes of posts in SortPosts order.
func sortOrder(posts []Post) []int {
	idx := make([]int, len(posts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		pa, pb := posts[idx[a]], posts[idx[b]]
		da, db := pa.EffectiveDate(), pb.EffectiveDate()
		if !da.Equal(db) {
			return da.After(db)
		}
		return pa.ID < pb.ID
	})
	return idx
}

// FilterPublished drops drafts and posts scheduled further in the future than
// margin. The input slice is left untouched.
func FilterPublished(posts []Post, now time.Time, margin time.Duration) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Draft {
			continue
		}
		if now.Before(p.PubDatetime.Add(-margin)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// latestDate returns the maximum effective date across posts, or the Unix
// epoch when posts is empty.
func latestDate(posts []Post) time.Time {
	latest := time.Unix(0, 0).UTC()
	for _, p := range posts {
		if d := p.EffectiveDate(); d.After(latest) {
			latest = d
		}
	}
	return latest
}
