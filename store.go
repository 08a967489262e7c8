package pubfeed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the post collection. It implements
// PostSource.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while an import writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    pub_datetime TEXT NOT NULL,
    mod_datetime TEXT,
    tags TEXT NOT NULL DEFAULT '[]',
    body TEXT NOT NULL DEFAULT '',
    draft INTEGER NOT NULL DEFAULT 0
);
`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE posts ADD COLUMN og_image TEXT NOT NULL DEFAULT '';`); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}

const postColumns = `id, title, description, pub_datetime, mod_datetime, tags, og_image, body, draft`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var (
		p         Post
		pub, tags string
		mod       sql.NullString
		draft     int
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &pub, &mod, &tags, &p.OGImage, &p.Body, &draft); err != nil {
		return Post{}, err
	}
	var err error
	if p.PubDatetime, err = time.Parse(time.RFC3339Nano, pub); err != nil {
		return Post{}, fmt.Errorf("post %q: pub_datetime: %w", p.ID, err)
	}
	if mod.Valid && mod.String != "" {
		t, err := time.Parse(time.RFC3339Nano, mod.String)
		if err != nil {
			return Post{}, fmt.Errorf("post %q: mod_datetime: %w", p.ID, err)
		}
		p.ModDatetime = &t
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return Post{}, fmt.Errorf("post %q: tags: %w", p.ID, err)
	}
	p.Draft = draft == 1
	return p, nil
}

// ListPosts returns every stored post, drafts included, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY pub_datetime DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single post by id, or ErrNotFound.
func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func savePost(ctx context.Context, db execer, p Post) error {
	if p.ID == "" {
		return ErrMissingID
	}
	if !validID(p.ID) {
		return fmt.Errorf("post %q: %w", p.ID, ErrInvalidID)
	}
	if p.PubDatetime.IsZero() {
		return fmt.Errorf("post %q: %w", p.ID, ErrMissingPubDatetime)
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	var mod sql.NullString
	if p.ModDatetime != nil {
		mod = sql.NullString{String: p.ModDatetime.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	draft := 0
	if p.Draft {
		draft = 1
	}
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.PubDatetime.UTC().Format(time.RFC3339Nano), mod, string(encoded), p.OGImage, p.Body, draft)
	return err
}

// SavePost upserts a post by id.
func (s *Store) SavePost(ctx context.Context, p Post) error {
	return savePost(ctx, s.db, p)
}

// ImportPosts upserts posts in a single transaction. When prune is set, stored
// posts whose id is not in posts are removed, leaving the table an exact copy.
func (s *Store) ImportPosts(ctx context.Context, posts []Post, prune bool) error {
	if err := ValidatePosts(posts); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if prune {
		if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
			return err
		}
	}
	for _, p := range posts {
		if err := savePost(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeletePost removes a post by id.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}
