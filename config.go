package pubfeed

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CrawlerRule is a per-bot block in robots.txt.
type CrawlerRule struct {
	UserAgent  string `yaml:"user_agent"`
	CrawlDelay int    `yaml:"crawl_delay"`
}

// SiteConfig holds all configuration for a pubfeed site. It is read once per
// process and handed to every builder by value.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site title (default "Blog")
	URL         string `yaml:"url"`         // Canonical base URL, always ends in "/"
	Description string `yaml:"description"` // Channel description
	Author      string `yaml:"author"`      // Feed author and copyright holder

	Language       string `yaml:"language"`        // default "zh-cn"
	FeedStylesheet string `yaml:"feed_stylesheet"` // default "/rss/styles.xsl"
	LogoPath       string `yaml:"logo_path"`       // default "logo.png"
	FeedTTL        int    `yaml:"feed_ttl"`        // minutes, default 60

	Disallow []string      `yaml:"disallow"`
	Crawlers []CrawlerRule `yaml:"crawlers"`

	ContentDir          string        `yaml:"content_dir"`           // default "content/posts"
	ScheduledPostMargin time.Duration `yaml:"scheduled_post_margin"` // default 15m
	RenderWorkers       int           `yaml:"render_workers"`        // default NumCPU

	Addr           string        `yaml:"addr"`          // default ":3000"
	DatabasePath   string        `yaml:"database_path"` // SQLite path; empty serves ContentDir
	PostCacheTTL   time.Duration `yaml:"post_cache_ttl"`
	RateLimit      int           `yaml:"rate_limit"` // requests per RateWindow per IP, 0 disables
	RateWindow     time.Duration `yaml:"rate_window"`
	MetricsEnabled bool          `yaml:"metrics_enabled"`
	LogLevel       string        `yaml:"log_level"`
}

// DefaultDisallow is the deny-list applied to every crawler.
var DefaultDisallow = []string{"/admin/", "/draft/", "/api/", "/*?"}

// DefaultCrawlers lists the named bots that get their own crawl-delay.
var DefaultCrawlers = []CrawlerRule{
	{UserAgent: "Googlebot", CrawlDelay: 1},
	{UserAgent: "Bingbot", CrawlDelay: 1},
	{UserAgent: "Baiduspider", CrawlDelay: 2},
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000/"
	}
	c.URL = normalizeBaseURL(c.URL)
	if c.Language == "" {
		c.Language = "zh-cn"
	}
	if c.FeedStylesheet == "" {
		c.FeedStylesheet = "/rss/styles.xsl"
	}
	if c.LogoPath == "" {
		c.LogoPath = "logo.png"
	}
	if c.FeedTTL == 0 {
		c.FeedTTL = 60
	}
	if c.Disallow == nil {
		c.Disallow = append([]string(nil), DefaultDisallow...)
	}
	if c.Crawlers == nil {
		c.Crawlers = append([]CrawlerRule(nil), DefaultCrawlers...)
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/posts"
	}
	if c.ScheduledPostMargin == 0 {
		c.ScheduledPostMargin = 15 * time.Minute
	}
	if c.RenderWorkers <= 0 {
		c.RenderWorkers = runtime.NumCPU()
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.RateWindow == 0 {
		c.RateWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Normalized returns a copy of c with defaults applied.
func (c SiteConfig) Normalized() SiteConfig {
	c.setDefaults()
	return c
}

// LoadConfig reads a YAML config file, expanding ${VAR} references from the
// environment (and a .env file when present). SITE_* variables override the
// file. An empty path skips the file and uses environment and defaults only.
func LoadConfig(path string) (SiteConfig, error) {
	_ = godotenv.Load()

	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("read config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Name = EnvOr("SITE_NAME", cfg.Name)
	cfg.URL = EnvOr("SITE_URL", cfg.URL)
	cfg.Description = EnvOr("SITE_DESCRIPTION", cfg.Description)
	cfg.Author = EnvOr("SITE_AUTHOR", cfg.Author)
	cfg.DatabasePath = EnvOr("DATABASE_PATH", cfg.DatabasePath)

	cfg.setDefaults()
	return cfg, nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithSource replaces the post source the App serves from.
func WithSource(src PostSource) Option {
	return func(a *App) {
		a.source = src
	}
}

// WithGeneratorOptions forwards options to the App's Generator.
func WithGeneratorOptions(opts ...GeneratorOption) Option {
	return func(a *App) {
		a.genOpts = append(a.genOpts, opts...)
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
