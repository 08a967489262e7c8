package pubfeed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/eringen/pubfeed/markdown"
)

// rfc1123GMT is the RSS date layout; times are converted to UTC first.
const rfc1123GMT = "Mon, 02 Jan 2006 15:04:05 GMT"

type rssXML struct {
	XMLName      xml.Name   `xml:"rss"`
	Version      string     `xml:"version,attr"`
	XMLNSContent string     `xml:"xmlns:content,attr"`
	XMLNSMedia   string     `xml:"xmlns:media,attr"`
	XMLNSAtom    string     `xml:"xmlns:atom,attr"`
	Channel      rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string      `xml:"title"`
	Description   string      `xml:"description"`
	Link          string      `xml:"link"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	Language      string      `xml:"language"`
	LastBuildDate string      `xml:"lastBuildDate"`
	Image         rssImage    `xml:"image"`
	Copyright     string      `xml:"copyright"`
	TTL           int         `xml:"ttl"`
	Items         []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	GUID        rssGUID   `xml:"guid"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate"`
	Content     string    `xml:"content:encoded"`
	Author      string    `xml:"author,omitempty"`
	Categories  []string  `xml:"category"`
	Media       *rssMedia `xml:"media:content,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssMedia struct {
	URL    string `xml:"url,attr"`
	Medium string `xml:"medium,attr"`
}

// BuildFeed renders the RSS 2.0 document. contents[i] is the sanitized HTML
// body of posts[i]; a missing entry is treated as empty. Items are emitted in
// SortPosts order, one per post. now stamps lastBuildDate and the copyright
// year.
func BuildFeed(cfg SiteConfig, posts []Post, contents []string, now time.Time) ([]byte, error) {
	base := cfg.URL
	items := make([]rssItem, 0, len(posts))
	for _, i := range sortOrder(posts) {
		p := posts[i]
		if !validID(p.ID) {
			continue
		}
		content := ""
		if i < len(contents) {
			content = contents[i]
		}
		postURL := BuildURL(base, "posts", p.ID)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			GUID:        rssGUID{IsPermaLink: "true", Value: postURL},
			Description: p.Description,
			PubDate:     p.EffectiveDate().UTC().Format(rfc1123GMT),
			Content:     content,
			Author:      cfg.Author,
			Categories:  postCategories(p),
		}
		if img := ogImageURL(base, p.ID, p.OGImage); img != "" {
			item.Media = &rssMedia{URL: img, Medium: "image"}
		}
		items = append(items, item)
	}

	logo := cfg.LogoPath
	if !isAbsoluteHTTP(logo) {
		logo = FileURL(base, logo)
	}
	feed := rssXML{
		Version:      "2.0",
		XMLNSContent: "http://purl.org/rss/1.0/modules/content/",
		XMLNSMedia:   "http://search.yahoo.com/mrss/",
		XMLNSAtom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:       cfg.Name,
			Description: cfg.Description,
			Link:        base,
			AtomLink: rssAtomLink{
				Href: FileURL(base, ArtifactRSS),
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Language:      cfg.Language,
			LastBuildDate: now.UTC().Format(rfc1123GMT),
			Image: rssImage{
				URL:   logo,
				Title: cfg.Name,
				Link:  base,
			},
			Copyright: strings.TrimSpace(fmt.Sprintf("Copyright %d %s", now.Year(), cfg.Author)),
			TTL:       cfg.FeedTTL,
			Items:     items,
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if cfg.FeedStylesheet != "" {
		buf.WriteString(`<?xml-stylesheet href="`)
		if err := xml.EscapeText(&buf, []byte(cfg.FeedStylesheet)); err != nil {
			return nil, err
		}
		buf.WriteString(`" type="text/xsl"?>` + "\n")
	}
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return nil, fmt.Errorf("encode rss: %w", err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// ogImageURL resolves a post's image against the post's own URL. It returns
// "" for unsafe schemes and for relative paths that climb out of the post.
func ogImageURL(base, id, img string) string {
	img, ok := markdown.SafeURL(img)
	if !ok {
		return ""
	}
	if isAbsoluteHTTP(img) {
		return img
	}
	for _, seg := range strings.Split(img, "/") {
		if seg == ".." {
			return ""
		}
	}
	return FileURL(base, "posts", id, img)
}
