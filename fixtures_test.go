package pubfeed

import (
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// scenarioPosts is the two-post collection used across the builder tests:
// "b" was modified after "a" was published, and both tag the same topic with
// different case.
func scenarioPosts() []Post {
	return []Post{
		{ID: "a", Title: "Post A", Description: "first", PubDatetime: day(2024, 1, 1), Tags: []string{"AI"}, Body: "hello from **a**"},
		{ID: "b", Title: "Post B", Description: "second", PubDatetime: day(2024, 2, 1), ModDatetime: timePtr(day(2024, 3, 1)), Tags: []string{"ai", "Dev"}, Body: "hello from b"},
	}
}

func testConfig() SiteConfig {
	return SiteConfig{
		Name:        "Test Blog",
		URL:         "https://example.com",
		Description: "Notes",
		Author:      "Jane",
	}.Normalized()
}
