package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubfeed"
)

const helloPost = `---
title: Hello
description: First post
pubDatetime: 2024-01-02T10:00:00Z
tags: [Go, Notes]
---
Hello **world**.
`

func clearSiteEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SITE_NAME", "SITE_URL", "SITE_DESCRIPTION", "SITE_AUTHOR", "DATABASE_PATH"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func testGlobal() *Global {
	return &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    slog.Level
	}{
		{"debug", false, slog.LevelDebug},
		{"warn", false, slog.LevelWarn},
		{" error ", false, slog.LevelError},
		{"bogus", false, slog.LevelInfo},
		{"error", true, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := newLogger(tt.level, tt.verbose)
			ctx := context.Background()
			assert.True(t, l.Enabled(ctx, tt.want))
			if tt.want > slog.LevelDebug {
				assert.False(t, l.Enabled(ctx, tt.want-1))
			}
		})
	}
}

func TestOpenSourceUsesContentDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "hello.md"), helloPost)

	src, closeFn, err := openSource(pubfeed.SiteConfig{ContentDir: dir})
	require.NoError(t, err)
	defer closeFn()

	posts, err := src.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].ID)
}

func TestOpenSourceUsesStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "posts.db")

	src, closeFn, err := openSource(pubfeed.SiteConfig{DatabasePath: dbPath})
	require.NoError(t, err)
	defer closeFn()

	_, ok := src.(*pubfeed.Store)
	assert.True(t, ok)
}

func TestBuildCmdWritesArtifacts(t *testing.T) {
	clearSiteEnv(t)
	t.Setenv("SITE_URL", "https://example.com")
	contentDir := filepath.Join(t.TempDir(), "posts")
	writeFile(t, filepath.Join(contentDir, "hello.md"), helloPost)
	out := filepath.Join(t.TempDir(), "dist")

	cmd := &BuildCmd{Output: out, Content: contentDir}
	require.NoError(t, cmd.Run(testGlobal(), &CLI{}))

	for _, art := range pubfeed.Artifacts() {
		_, err := os.Stat(filepath.Join(out, art.Name))
		assert.NoError(t, err, art.Name)
	}
	feed, err := os.ReadFile(filepath.Join(out, pubfeed.ArtifactRSS))
	require.NoError(t, err)
	assert.Contains(t, string(feed), "https://example.com/posts/hello/")
}

func TestBuildCmdFailsOnBadContent(t *testing.T) {
	clearSiteEnv(t)
	contentDir := t.TempDir()
	writeFile(t, filepath.Join(contentDir, "broken.md"), "---\ntitle: [unclosed\n---\nbody\n")

	cmd := &BuildCmd{Output: filepath.Join(t.TempDir(), "dist"), Content: contentDir}
	assert.Error(t, cmd.Run(testGlobal(), &CLI{}))
}

func TestImportCmdRequiresDatabase(t *testing.T) {
	clearSiteEnv(t)
	cmd := &ImportCmd{Content: t.TempDir()}
	err := cmd.Run(testGlobal(), &CLI{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_path")
}

func TestImportCmdCopiesPosts(t *testing.T) {
	clearSiteEnv(t)
	dbPath := filepath.Join(t.TempDir(), "posts.db")
	t.Setenv("DATABASE_PATH", dbPath)
	contentDir := t.TempDir()
	writeFile(t, filepath.Join(contentDir, "hello.md"), helloPost)

	cmd := &ImportCmd{Content: contentDir}
	require.NoError(t, cmd.Run(testGlobal(), &CLI{}))

	store, err := pubfeed.NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	post, err := store.GetPost(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, []string{"Go", "Notes"}, post.Tags)
}

func TestServeCmdRejectsWatchWithDatabase(t *testing.T) {
	clearSiteEnv(t)
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "posts.db"))

	cmd := &ServeCmd{Watch: true}
	err := cmd.Run(testGlobal(), &CLI{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch")
}

func TestAddAndRmCmds(t *testing.T) {
	clearSiteEnv(t)
	dbPath := filepath.Join(t.TempDir(), "posts.db")
	t.Setenv("DATABASE_PATH", dbPath)
	file := filepath.Join(t.TempDir(), "Hello World.md")
	writeFile(t, file, helloPost)

	require.NoError(t, (&AddCmd{Files: []string{file}}).Run(testGlobal(), &CLI{}))

	store, err := pubfeed.NewStore(dbPath)
	require.NoError(t, err)
	post, err := store.GetPost(context.Background(), "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	require.NoError(t, store.Close())

	require.NoError(t, (&RmCmd{IDs: []string{"hello-world"}}).Run(testGlobal(), &CLI{}))

	store, err = pubfeed.NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	_, err = store.GetPost(context.Background(), "hello-world")
	assert.ErrorIs(t, err, pubfeed.ErrNotFound)
}

func TestRmCmdUnknownID(t *testing.T) {
	clearSiteEnv(t)
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "posts.db"))

	err := (&RmCmd{IDs: []string{"missing"}}).Run(testGlobal(), &CLI{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing" not found`)
}

func TestAddCmdRejectsEscapingSlug(t *testing.T) {
	clearSiteEnv(t)
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "posts.db"))
	file := filepath.Join(t.TempDir(), "bad.md")
	writeFile(t, file, "---\ntitle: Bad\nslug: ../admin\npubDatetime: 2024-01-02\n---\nbody\n")

	err := (&AddCmd{Files: []string{file}}).Run(testGlobal(), &CLI{})
	assert.ErrorIs(t, err, pubfeed.ErrInvalidID)
}
