package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
)

// version is set at build time via ldflags.
var version = "dev"

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command line grammar.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path (optional; SITE_* environment variables also apply)" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build   BuildCmd   `cmd:"" help:"Write rss.xml, the sitemaps and robots.txt to a directory"`
	Serve   ServeCmd   `cmd:"" help:"Serve the discovery artifacts over HTTP"`
	Import  ImportCmd  `cmd:"" help:"Copy the content directory into the SQLite database"`
	Add     AddCmd     `cmd:"" help:"Insert or replace posts in the SQLite database from Markdown files"`
	Rm      RmCmd      `cmd:"" help:"Remove posts from the SQLite database by id"`
	Version VersionCmd `cmd:"" help:"Print the pubfeed version"`
}

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Printf("pubfeed %s\n", version)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pubfeed"),
		kong.Description("Feed, sitemap and robots.txt synthesis for a personal blog."),
		kong.UsageOnError(),
	)
	g := &Global{Logger: newLogger("info", cli.Verbose)}
	slog.SetDefault(g.Logger)
	if err := ctx.Run(g, &cli); err != nil {
		g.Logger.Error("Command failed", slog.String("command", ctx.Command()), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds the process logger. verbose forces debug level; otherwise
// level is one of debug, info, warn or error.
func newLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
