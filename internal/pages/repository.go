// Package pages loads the site's pages from markdown files with YAML front
// matter and stores the per-page meta records edited in the admin.
package pages

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("pages: not found")

const (
	KindPage      = "page"
	StatusPublish = "publish"
	StatusDraft   = "draft"

	formatMarkdown = "markdown"
	formatHTML     = "html"
)

// Page is one published or draft page.
type Page struct {
	Kind          string
	Slug          string
	Lang          string
	Title         string
	Summary       string
	Body          string
	Format        string
	Status        string
	FeaturedImage string
	Template      string
	Path          string
	UpdatedAt     time.Time
}

// Published reports whether the page is publicly visible.
func (p Page) Published() bool { return p.Status == StatusPublish }

// URLPath returns the public path, e.g. "/kontakt/" or "/service/implantate/".
func (p Page) URLPath() string {
	if p.Path != "" {
		return p.Path
	}
	if p.Kind != "" && p.Kind != KindPage {
		return "/" + p.Kind + "/" + p.Slug + "/"
	}
	return "/" + p.Slug + "/"
}

type frontMatter struct {
	Title         string `yaml:"title"`
	Summary       string `yaml:"summary"`
	Lang          string `yaml:"lang"`
	Format        string `yaml:"format"`
	Status        string `yaml:"status"`
	FeaturedImage string `yaml:"featured_image"`
	Template      string `yaml:"template"`
	Path          string `yaml:"path"`
	UpdatedAt     string `yaml:"updated_at"`
}

// Repository indexes pages found under <dir>/<kind>/<lang>/<slug>.md.
// Slugs are unique across kinds and languages.
type Repository struct {
	dir string

	mu     sync.RWMutex
	bySlug map[string]Page
}

// Open loads every page below dir.
func Open(dir string) (*Repository, error) {
	r := &Repository{dir: dir}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewStatic builds a repository from in-memory pages.
func NewStatic(pages ...Page) *Repository {
	r := &Repository{bySlug: map[string]Page{}}
	for _, p := range pages {
		if p.Kind == "" {
			p.Kind = KindPage
		}
		if p.Status == "" {
			p.Status = StatusPublish
		}
		if p.Format == "" {
			p.Format = formatMarkdown
		}
		r.bySlug[p.Slug] = p
	}
	return r
}

// Reload re-reads the content directory.
func (r *Repository) Reload() error {
	if r.dir == "" {
		return nil
	}
	index := map[string]Page{}
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		rel, err := filepath.Rel(r.dir, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 {
			return nil
		}
		page, err := readPage(path, parts[0], parts[1], strings.TrimSuffix(parts[2], ".md"))
		if err != nil {
			return err
		}
		if prev, dup := index[page.Slug]; dup {
			return fmt.Errorf("pages: duplicate slug %q (%s/%s and %s/%s)", page.Slug, prev.Kind, prev.Lang, page.Kind, page.Lang)
		}
		index[page.Slug] = page
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("pages: load %s: %w", r.dir, err)
	}
	r.mu.Lock()
	r.bySlug = index
	r.mu.Unlock()
	return nil
}

// Get returns the published page for slug.
func (r *Repository) Get(slug string) (Page, error) {
	slug = sanitizeSlug(slug)
	r.mu.RLock()
	p, ok := r.bySlug[slug]
	r.mu.RUnlock()
	if !ok || !p.Published() {
		return Page{}, ErrNotFound
	}
	return p, nil
}

// Exists reports whether a published page with slug exists.
func (r *Repository) Exists(slug string) bool {
	_, err := r.Get(slug)
	return err == nil
}

// List returns all published pages ordered by URL path.
func (r *Repository) List() []Page {
	r.mu.RLock()
	out := make([]Page, 0, len(r.bySlug))
	for _, p := range r.bySlug {
		if p.Published() {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].URLPath() < out[j].URLPath() })
	return out
}

// LatestUpdate returns the most recent UpdatedAt of all published pages.
func (r *Repository) LatestUpdate() time.Time {
	var latest time.Time
	for _, p := range r.List() {
		if p.UpdatedAt.After(latest) {
			latest = p.UpdatedAt
		}
	}
	return latest
}

func readPage(file, kind, lang, slug string) (Page, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Page{}, err
	}
	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("pages: parse front matter %s: %w", file, err)
		}
	}
	page := Page{
		Kind:          kind,
		Slug:          sanitizeSlug(slug),
		Lang:          firstNonEmpty(strings.TrimSpace(front.Lang), lang),
		Title:         strings.TrimSpace(front.Title),
		Summary:       strings.TrimSpace(front.Summary),
		Body:          body,
		Format:        strings.ToLower(strings.TrimSpace(front.Format)),
		Status:        strings.ToLower(strings.TrimSpace(front.Status)),
		FeaturedImage: strings.TrimSpace(front.FeaturedImage),
		Template:      strings.TrimSpace(front.Template),
		Path:          strings.TrimSpace(front.Path),
		UpdatedAt:     parseDate(front.UpdatedAt),
	}
	if page.Format == "" {
		page.Format = formatMarkdown
	}
	if page.Status == "" {
		page.Status = StatusPublish
	}
	if page.UpdatedAt.IsZero() {
		if info, err := os.Stat(file); err == nil {
			page.UpdatedAt = info.ModTime().UTC()
		}
	}
	if page.Title == "" {
		page.Title = prettifySlug(page.Slug)
	}
	return page, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	return cases.Title(language.German).String(strings.ReplaceAll(slug, "-", " "))
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
