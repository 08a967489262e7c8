package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/pubfeed"
	"github.com/eringen/pubfeed/content"
)

// loadConfig reads the config file and points the global logger at the
// configured level.
func loadConfig(g *Global, root *CLI) (pubfeed.SiteConfig, error) {
	cfg, err := pubfeed.LoadConfig(root.Config)
	if err != nil {
		return pubfeed.SiteConfig{}, fmt.Errorf("load config: %w", err)
	}
	g.Logger = newLogger(cfg.LogLevel, root.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// openSource picks the post source: the SQLite store when a database path is
// configured, the content directory otherwise.
func openSource(cfg pubfeed.SiteConfig) (pubfeed.PostSource, func() error, error) {
	if cfg.DatabasePath == "" {
		return content.NewSource(cfg.ContentDir), func() error { return nil }, nil
	}
	store, err := pubfeed.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return store, store.Close, nil
}

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output  string        `short:"o" help:"Output directory for the artifacts" default:"dist" type:"path"`
	Content string        `help:"Content directory (overrides content_dir)" type:"path"`
	Every   time.Duration `help:"Keep running and rebuild on this interval, so scheduled posts go live (e.g. 15m)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if b.Content != "" {
		cfg.ContentDir = b.Content
		cfg.DatabasePath = ""
	}
	src, closeSource, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	gen := pubfeed.NewGenerator(cfg, src, pubfeed.WithLogger(g.Logger))
	if b.Every > 0 {
		return runScheduled(gen, b.Output, b.Every)
	}

	start := time.Now()
	if err := gen.WriteAll(context.Background(), b.Output); err != nil {
		return err
	}
	g.Logger.Info("Artifacts written",
		slog.String(pubfeed.KeyPath, b.Output),
		slog.Float64(pubfeed.KeyDurationMS, float64(time.Since(start).Microseconds())/1000))
	return nil
}

func runScheduled(gen *pubfeed.Generator, dir string, every time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := pubfeed.NewRebuildScheduler(gen, dir, every)
	if err != nil {
		return err
	}
	s.Start()
	<-ctx.Done()
	return s.Stop()
}

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr  string `help:"Listen address (overrides addr)"`
	Watch bool   `help:"Reload posts when files in the content directory change"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if s.Watch && cfg.DatabasePath != "" {
		return errors.New("--watch requires the content directory source; unset database_path")
	}

	opts := []pubfeed.Option{}
	if cfg.DatabasePath == "" {
		opts = append(opts, pubfeed.WithSource(content.NewSource(cfg.ContentDir)))
	}
	app := pubfeed.New(cfg, opts...)
	app.Logger = g.Logger
	if err := app.Setup(); err != nil {
		return err
	}

	if s.Watch {
		go func() {
			err := content.Watch(ctx, cfg.ContentDir, content.DefaultDebounce, func() {
				g.Logger.Info("Content changed, invalidating post cache")
				app.InvalidateCache()
			})
			if err != nil {
				g.Logger.Error("Content watcher stopped", slog.String(pubfeed.KeyError, err.Error()))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		_ = app.Close()
		return err
	case <-ctx.Done():
		g.Logger.Info("Shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return app.Shutdown(shutdownCtx)
}

// openStore loads the config and opens the SQLite store, which the write
// commands require.
func openStore(g *Global, root *CLI) (pubfeed.SiteConfig, *pubfeed.Store, error) {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return pubfeed.SiteConfig{}, nil, err
	}
	if cfg.DatabasePath == "" {
		return pubfeed.SiteConfig{}, nil, errors.New("this command requires database_path (or DATABASE_PATH)")
	}
	store, err := pubfeed.NewStore(cfg.DatabasePath)
	if err != nil {
		return pubfeed.SiteConfig{}, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, store, nil
}

// ImportCmd implements the 'import' command.
type ImportCmd struct {
	Content string `help:"Content directory (overrides content_dir)" type:"path"`
	Prune   bool   `help:"Delete stored posts that are not in the content directory"`
}

func (i *ImportCmd) Run(g *Global, root *CLI) error {
	cfg, store, err := openStore(g, root)
	if err != nil {
		return err
	}
	defer store.Close()

	dir := cfg.ContentDir
	if i.Content != "" {
		dir = i.Content
	}
	ctx := context.Background()
	posts, err := content.NewSource(dir).ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	if err := store.ImportPosts(ctx, posts, i.Prune); err != nil {
		return fmt.Errorf("import posts: %w", err)
	}
	g.Logger.Info("Posts imported",
		slog.Int(pubfeed.KeyPosts, len(posts)),
		slog.String(pubfeed.KeyPath, cfg.DatabasePath),
		slog.Bool("prune", i.Prune))
	return nil
}

// AddCmd implements the 'add' command.
type AddCmd struct {
	Files []string `arg:"" name:"file" help:"Markdown post files to insert or replace" type:"existingfile"`
}

func (a *AddCmd) Run(g *Global, root *CLI) error {
	_, store, err := openStore(g, root)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	for _, f := range a.Files {
		post, err := content.ReadFile(f)
		if err != nil {
			return err
		}
		if err := store.SavePost(ctx, post); err != nil {
			return fmt.Errorf("save %s: %w", f, err)
		}
		g.Logger.Info("Post saved", slog.String(pubfeed.KeyPostID, post.ID), slog.String(pubfeed.KeyPath, f))
	}
	return nil
}

// RmCmd implements the 'rm' command.
type RmCmd struct {
	IDs []string `arg:"" name:"id" help:"Ids of the posts to remove"`
}

func (r *RmCmd) Run(g *Global, root *CLI) error {
	_, store, err := openStore(g, root)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	for _, id := range r.IDs {
		post, err := store.GetPost(ctx, id)
		if errors.Is(err, pubfeed.ErrNotFound) {
			return fmt.Errorf("post %q not found", id)
		}
		if err != nil {
			return fmt.Errorf("get post %q: %w", id, err)
		}
		if err := store.DeletePost(ctx, id); err != nil {
			return fmt.Errorf("delete post %q: %w", id, err)
		}
		g.Logger.Info("Post removed", slog.String(pubfeed.KeyPostID, id), slog.String("title", post.Title))
	}
	return nil
}
