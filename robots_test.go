package pubfeed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRobotsDefaults(t *testing.T) {
	out := string(BuildRobots(testConfig()))

	want := `# robots.txt for Test Blog
# https://example.com/

User-agent: *
Allow: /
Disallow: /admin/
Disallow: /draft/
Disallow: /api/
Disallow: /*?

# Allow specific bots with custom rules
User-agent: Googlebot
Allow: /
Crawl-delay: 1

User-agent: Bingbot
Allow: /
Crawl-delay: 1

User-agent: Baiduspider
Allow: /
Crawl-delay: 2

# Sitemap
Sitemap: https://example.com/sitemap-index.xml
`
	assert.Equal(t, want, out)
}

func TestBuildRobotsSingleSitemapDirective(t *testing.T) {
	cfgs := []SiteConfig{
		testConfig(),
		SiteConfig{URL: "https://other.example/blog"}.Normalized(),
		SiteConfig{URL: "https://x.example/", Crawlers: []CrawlerRule{}, Disallow: []string{}}.Normalized(),
	}
	for _, cfg := range cfgs {
		out := string(BuildRobots(cfg))
		assert.Equal(t, 1, strings.Count(out, "Sitemap:"), cfg.URL)
		assert.Contains(t, out, "Sitemap: "+cfg.URL+"sitemap-index.xml\n")
	}
}

func TestBuildRobotsNoCrawlers(t *testing.T) {
	cfg := testConfig()
	cfg.Crawlers = []CrawlerRule{}
	out := string(BuildRobots(cfg))
	assert.NotContains(t, out, "Crawl-delay")
	assert.Contains(t, out, "Disallow: /*?\n\n# Sitemap\n")
}

func TestBuildRobotsCrawlDelayOmittedWhenZero(t *testing.T) {
	cfg := testConfig()
	cfg.Crawlers = []CrawlerRule{{UserAgent: "DuckDuckBot"}}
	out := string(BuildRobots(cfg))
	assert.Contains(t, out, "User-agent: DuckDuckBot\nAllow: /\n\n")
	assert.NotContains(t, out, "Crawl-delay")
}

func TestBuildRobotsStripsNewlines(t *testing.T) {
	cfg := testConfig()
	cfg.Disallow = []string{"/private/\nSitemap: https://evil.example/x.xml"}
	out := string(BuildRobots(cfg))
	assert.Equal(t, 1, strings.Count(out, "\nSitemap:"))
}
