package content

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eringen/pubfeed"
)

// Source reads posts from a directory tree. Every call to ListPosts walks the
// tree again; wrap it in a pubfeed.PostCache when serving.
type Source struct {
	fsys fs.FS
	root string
}

// NewSource returns a Source rooted at dir on the local file system.
func NewSource(dir string) *Source {
	return &Source{fsys: os.DirFS(dir), root: dir}
}

// NewSourceFS returns a Source reading from fsys.
func NewSourceFS(fsys fs.FS) *Source {
	return &Source{fsys: fsys, root: "."}
}

// Root returns the directory the source was created with.
func (s *Source) Root() string {
	return s.root
}

// ReadFile parses a single post file. The id is the frontmatter slug or,
// without one, the slugified file name.
func ReadFile(file string) (pubfeed.Post, error) {
	post, err := NewSource(filepath.Dir(file)).readPost(filepath.Base(file))
	if err != nil {
		return pubfeed.Post{}, fmt.Errorf("%s: %w", file, err)
	}
	return post, nil
}

func isPostFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".md" || ext == ".mdx"
}

// hidden reports whether a file or directory is excluded from the collection.
// Names starting with "_" or "." are private to the author.
func hidden(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// ListPosts parses every Markdown file under the root. Posts are returned
// sorted by id. A file that cannot be read or parsed fails the whole listing.
func (s *Source) ListPosts(ctx context.Context) ([]pubfeed.Post, error) {
	posts := []pubfeed.Post{}
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != "." && hidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isPostFile(p) {
			return nil
		}
		post, err := s.readPost(p)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Join(s.root, filepath.FromSlash(p)), err)
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

func (s *Source) readPost(p string) (pubfeed.Post, error) {
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return pubfeed.Post{}, err
	}
	raw, body, _, err := Split(data)
	if err != nil {
		return pubfeed.Post{}, err
	}
	fm, err := parseFrontmatter(raw)
	if err != nil {
		return pubfeed.Post{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	id := strings.Trim(fm.Slug, "/")
	if id == "" {
		id = idFromPath(p)
	}
	post := pubfeed.Post{
		ID:          id,
		Title:       strings.TrimSpace(fm.Title),
		Description: strings.TrimSpace(fm.Description),
		PubDatetime: fm.PubDatetime.Time,
		Tags:        pubfeed.FilterEmpty(fm.Tags),
		OGImage:     strings.TrimSpace(fm.OGImage),
		Body:        string(body),
		Draft:       fm.Draft,
	}
	if fm.ModDatetime != nil && !fm.ModDatetime.IsZero() {
		mod := fm.ModDatetime.Time
		post.ModDatetime = &mod
	}
	return post, nil
}

// idFromPath derives a post id from its path relative to the root: the
// extension is dropped and each segment is slugified, so
// "2024/Hello World.md" becomes "2024/hello-world".
func idFromPath(p string) string {
	p = strings.TrimSuffix(p, path.Ext(p))
	segs := strings.Split(p, "/")
	out := segs[:0]
	for _, seg := range segs {
		if slug := pubfeed.SlugifyTag(seg); slug != "" {
			out = append(out, slug)
		}
	}
	return strings.Join(out, "/")
}
