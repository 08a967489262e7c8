package pubfeed

import (
	"fmt"
	"strings"
)

// BuildRobots renders robots.txt: the deny-list for every crawler, a block per
// named crawler, and a single Sitemap directive for the sitemap index.
func BuildRobots(cfg SiteConfig) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# robots.txt for %s\n", oneLine(cfg.Name))
	fmt.Fprintf(&b, "# %s\n\n", oneLine(cfg.URL))

	b.WriteString("User-agent: *\nAllow: /\n")
	for _, path := range cfg.Disallow {
		if path = oneLine(path); path != "" {
			fmt.Fprintf(&b, "Disallow: %s\n", path)
		}
	}

	b.WriteString("\n")

	if len(cfg.Crawlers) > 0 {
		b.WriteString("# Allow specific bots with custom rules\n")
	}
	for _, c := range cfg.Crawlers {
		agent := oneLine(c.UserAgent)
		if agent == "" {
			continue
		}
		fmt.Fprintf(&b, "User-agent: %s\nAllow: /\n", agent)
		if c.CrawlDelay > 0 {
			fmt.Fprintf(&b, "Crawl-delay: %d\n", c.CrawlDelay)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "# Sitemap\nSitemap: %s\n", FileURL(cfg.URL, ArtifactSitemapIndex))
	return []byte(b.String())
}

// oneLine flattens s so a config value can never inject an extra directive.
func oneLine(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s))
}
