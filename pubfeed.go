// Package pubfeed synthesizes the machine-readable discovery surface of a
// personal blog from its post collection: an RSS 2.0 feed, a sitemap index
// with combined, posts and tags sitemaps, and robots.txt.
//
// Artifacts can be written to a directory with Generator.WriteAll, or served
// live by an App, which recomputes them from a cached PostSource.
package pubfeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/pubfeed/metrics"
)

// App serves the discovery artifacts over HTTP. It wires together the post
// source, cache, generator, middleware and routes.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Generator *Generator
	Cache     *PostCache
	Store     *Store
	Logger    *slog.Logger

	source       PostSource
	limiter      echo.MiddlewareFunc
	recorder     *metrics.PrometheusRecorder
	genOpts      []GeneratorOption
	customRoutes []func(*App)
	ready        bool
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup opens the post source and registers middleware and routes. Start
// calls it; tests call it directly to drive the Echo instance.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.source == nil {
		if a.Config.DatabasePath == "" {
			return errors.New("pubfeed: no post source: set DatabasePath or use WithSource")
		}
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("pubfeed: init store: %w", err)
		}
		a.Store = store
		a.source = store
	}

	a.Cache = NewPostCache(a.source, a.Config.PostCacheTTL)

	genOpts := []GeneratorOption{WithLogger(a.Logger)}
	if a.Config.MetricsEnabled {
		a.recorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
		genOpts = append(genOpts, WithRecorder(a.recorder))
	}
	a.Generator = NewGenerator(a.Config, a.Cache, append(genOpts, a.genOpts...)...)

	if a.Config.RateLimit > 0 {
		a.limiter = newRateLimiter(a.Config.RateLimit, a.Config.RateWindow)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo
	methods := []string{http.MethodGet, http.MethodHead}

	for _, art := range Artifacts() {
		e.Match(methods, "/"+art.Name, a.handleArtifact(art))
	}
	if path := a.stylesheetPath(); path != "" {
		e.Match(methods, path, handleStylesheet)
	}
	if a.recorder != nil {
		e.GET("/metrics", echo.WrapHandler(a.recorder.Handler()))
	}
}

// Start sets the App up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Logger.Info("Serving discovery artifacts", slog.String("addr", a.Config.Addr), slog.String("url", a.Config.URL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// InvalidateCache drops the cached post listing so the next request reloads
// it from the source.
func (a *App) InvalidateCache() {
	if a.Cache != nil {
		a.Cache.Invalidate()
	}
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close releases the store. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
