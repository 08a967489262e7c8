package pubfeed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	// sitemapTime is ISO 8601 in UTC with millisecond precision.
	sitemapTime = "2006-01-02T15:04:05.000Z"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapIndexXML struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	XMLNS    string       `xml:"xmlns,attr"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

func formatSitemapTime(t time.Time) string {
	return t.UTC().Format(sitemapTime)
}

// staticPages are the fixed site sections listed first in the combined sitemap.
var staticPages = []struct {
	path       string
	changeFreq string
	priority   string
}{
	{"", "daily", "1.0"},
	{"about", "monthly", "0.8"},
	{"search", "weekly", "0.7"},
	{"tags", "weekly", "0.7"},
	{"archives", "weekly", "0.7"},
}

// postURLs is the only place post entries are produced, so every sitemap that
// lists posts agrees on URL and lastmod.
func postURLs(cfg SiteConfig, posts []Post) []sitemapURL {
	sorted := SortPosts(posts)
	urls := make([]sitemapURL, 0, len(sorted))
	for _, p := range sorted {
		if !validID(p.ID) {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(cfg.URL, "posts", p.ID),
			LastMod:    formatSitemapTime(p.EffectiveDate()),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	return urls
}

// tagURLs is the only place tag entries are produced.
func tagURLs(cfg SiteConfig, posts []Post, now time.Time) []sitemapURL {
	tags := UniqueTags(posts)
	urls := make([]sitemapURL, 0, len(tags))
	for _, t := range tags {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(cfg.URL, "tags", t.Tag),
			LastMod:    formatSitemapTime(now),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}
	return urls
}

func tagsIndexURL(cfg SiteConfig, now time.Time) sitemapURL {
	return sitemapURL{
		Loc:        BuildURL(cfg.URL, "tags"),
		LastMod:    formatSitemapTime(now),
		ChangeFreq: "weekly",
		Priority:   "0.7",
	}
}

// BuildSitemapIndex renders the sitemap index pointing at the combined, posts
// and tags sitemaps. The posts child carries the newest effective date, or the
// Unix epoch when there are no posts.
func BuildSitemapIndex(cfg SiteConfig, posts []Post, now time.Time) ([]byte, error) {
	built := formatSitemapTime(now)
	index := sitemapIndexXML{
		XMLNS: sitemapNS,
		Sitemaps: []sitemapRef{
			{Loc: FileURL(cfg.URL, ArtifactSitemapCombined), LastMod: built},
			{Loc: FileURL(cfg.URL, ArtifactSitemapPosts), LastMod: formatSitemapTime(latestDate(posts))},
			{Loc: FileURL(cfg.URL, ArtifactSitemapTags), LastMod: built},
		},
	}
	return encodeXML(index)
}

// BuildSitemap renders the combined sitemap: static sections, then posts, then tags.
func BuildSitemap(cfg SiteConfig, posts []Post, now time.Time) ([]byte, error) {
	built := formatSitemapTime(now)
	urls := make([]sitemapURL, 0, len(staticPages)+len(posts))
	for _, page := range staticPages {
		loc := BuildURL(cfg.URL)
		if page.path != "" {
			loc = BuildURL(cfg.URL, page.path)
		}
		urls = append(urls, sitemapURL{
			Loc:        loc,
			LastMod:    built,
			ChangeFreq: page.changeFreq,
			Priority:   page.priority,
		})
	}
	urls = append(urls, postURLs(cfg, posts)...)
	urls = append(urls, tagURLs(cfg, posts, now)...)
	return encodeXML(sitemapURLSet{XMLNS: sitemapNS, URLs: urls})
}

// BuildPostsSitemap renders one entry per post.
func BuildPostsSitemap(cfg SiteConfig, posts []Post) ([]byte, error) {
	return encodeXML(sitemapURLSet{XMLNS: sitemapNS, URLs: postURLs(cfg, posts)})
}

// BuildTagsSitemap renders the tags index page followed by one entry per tag.
func BuildTagsSitemap(cfg SiteConfig, posts []Post, now time.Time) ([]byte, error) {
	urls := append([]sitemapURL{tagsIndexURL(cfg, now)}, tagURLs(cfg, posts, now)...)
	return encodeXML(sitemapURLSet{XMLNS: sitemapNS, URLs: urls})
}

func encodeXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
