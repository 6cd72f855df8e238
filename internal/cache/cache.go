// Package cache stores downloaded chapters on disk, one yaml file per
// chapter under <root>/<site>/<author>_<book>/, so a later run of the same
// book only fetches what is missing.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/util"
	"gopkg.in/yaml.v3"
)

// Root is the default cache location.
func Root() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "noveld")
	}

	return filepath.Join(os.TempDir(), "noveld")
}

type Dir struct {
	path string
}

type entry struct {
	URL        string   `yaml:"url"`
	Title      string   `yaml:"title"`
	Paragraphs []string `yaml:"paragraphs"`
}

func Open(root, site string, book providers.Book) (*Dir, error) {
	if root == "" {
		root = Root()
	}

	path := filepath.Join(root, site, chapters.BaseName(book))
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Dir{path: path}, nil
}

func (d *Dir) Path() string { return d.path }

func (d *Dir) file(index int) string {
	return filepath.Join(d.path, fmt.Sprintf("%05d.yaml", index))
}

// Load misses when the entry is unreadable or was stored for another URL,
// which happens when the site reorders its chapter list.
func (d *Dir) Load(ref providers.ChapterRef) (*providers.Chapter, bool) {
	b, err := os.ReadFile(d.file(ref.Index))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := yaml.Unmarshal(b, &e); err != nil || e.URL != ref.URL || len(e.Paragraphs) == 0 {
		return nil, false
	}

	return &providers.Chapter{
		Index:      ref.Index,
		URL:        e.URL,
		Title:      e.Title,
		Paragraphs: e.Paragraphs,
	}, true
}

func (d *Dir) Store(ch *providers.Chapter) error {
	b, err := yaml.Marshal(entry{URL: ch.URL, Title: ch.Title, Paragraphs: ch.Paragraphs})
	if err != nil {
		return err
	}

	f, err := util.CreateAtomic(d.file(ch.Index))
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Abort()
		return err
	}

	return f.Commit()
}

// Clear drops the book and, when it was the last one, the site directory.
func (d *Dir) Clear() error {
	if err := os.RemoveAll(d.path); err != nil {
		return err
	}
	util.RemoveIfEmpty(filepath.Dir(d.path))

	return nil
}
