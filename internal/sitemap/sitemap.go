// Package sitemap renders the XML sitemap index, the pages sitemap and the
// images sitemap. Output depends only on its inputs so repeated requests
// produce identical bytes.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vuducle/le-custom-sub000/internal/media"
	"github.com/vuducle/le-custom-sub000/internal/pages"
)

const (
	pagesNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	imageNamespace = "http://www.google.com/schemas/sitemap-image/1.1"

	PagesPath  = "/sitemap-pages.xml"
	ImagesPath = "/sitemap-images.xml"
)

// PageSource lists the published pages.
type PageSource interface {
	List() []pages.Page
	LatestUpdate() time.Time
}

// Entry is one <url> element of the pages sitemap.
type Entry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

// Generator builds sitemap documents for one site.
type Generator struct {
	base   *url.URL
	pages  PageSource
	media  media.Library
	meta   func(slug string) (pages.Meta, bool)
	render func(p pages.Page) (string, error)
}

// Option customises the Generator.
type Option func(*Generator)

// WithMeta supplies per-page meta records for hero images.
func WithMeta(fn func(slug string) (pages.Meta, bool)) Option {
	return func(g *Generator) { g.meta = fn }
}

// WithRenderer overrides how page bodies are turned into HTML.
func WithRenderer(fn func(p pages.Page) (string, error)) Option {
	return func(g *Generator) { g.render = fn }
}

// New returns a generator for the site at baseURL. lib may be nil.
func New(baseURL string, src PageSource, lib media.Library, opts ...Option) (*Generator, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("sitemap: invalid base url %q", baseURL)
	}
	g := &Generator{
		base:  base,
		pages: src,
		media: lib,
		meta:  func(string) (pages.Meta, bool) { return pages.Meta{}, false },
		render: func(p pages.Page) (string, error) {
			body, err := pages.RenderBody(p)
			return string(body), err
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type xmlIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	XMLNS    string       `xml:"xmlns,attr"`
	Sitemaps []xmlSitemap `xml:"sitemap"`
}

type xmlSitemap struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type xmlURLSet struct {
	XMLName    xml.Name `xml:"urlset"`
	XMLNS      string   `xml:"xmlns,attr"`
	XMLNSImage string   `xml:"xmlns:image,attr,omitempty"`
	URLs       []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq string     `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
	Images     []xmlImage `xml:"image:image,omitempty"`
}

type xmlImage struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title,omitempty"`
}

// Index renders the sitemap index referencing the pages and images sitemaps.
func (g *Generator) Index() ([]byte, error) {
	lastmod := formatTime(g.pages.LatestUpdate())
	return encode(xmlIndex{
		XMLNS: pagesNamespace,
		Sitemaps: []xmlSitemap{
			{Loc: g.absolute(PagesPath), LastMod: lastmod},
			{Loc: g.absolute(ImagesPath), LastMod: lastmod},
		},
	})
}

// Entries returns the homepage followed by every published page, ordered by location.
func (g *Generator) Entries() []Entry {
	list := g.pages.List()
	out := make([]Entry, 0, len(list)+1)
	out = append(out, Entry{Loc: g.absolute("/"), LastMod: g.pages.LatestUpdate(), ChangeFreq: "daily", Priority: 1.0})
	for _, p := range list {
		freq, prio := classify(p)
		out = append(out, Entry{Loc: g.absolute(p.URLPath()), LastMod: p.UpdatedAt, ChangeFreq: freq, Priority: prio})
	}
	return out
}

// Pages renders the pages sitemap.
func (g *Generator) Pages() ([]byte, error) {
	set := xmlURLSet{XMLNS: pagesNamespace}
	for _, e := range g.Entries() {
		set.URLs = append(set.URLs, xmlURL{
			Loc:        e.Loc,
			LastMod:    formatTime(e.LastMod),
			ChangeFreq: e.ChangeFreq,
			Priority:   fmt.Sprintf("%.1f", e.Priority),
		})
	}
	return encode(set)
}

// Images renders the images sitemap. Library attachments are listed under the
// homepage; pages contribute their featured image, hero image and body images.
func (g *Generator) Images(ctx context.Context) ([]byte, error) {
	set := xmlURLSet{XMLNS: pagesNamespace, XMLNSImage: imageNamespace}

	if g.media != nil {
		attachments, err := g.media.Images(ctx)
		if err != nil {
			return nil, fmt.Errorf("sitemap: list media: %w", err)
		}
		group := newImageGroup(g)
		for _, a := range attachments {
			group.add(a.URL, a.Title)
		}
		if len(group.images) > 0 {
			set.URLs = append(set.URLs, xmlURL{Loc: g.absolute("/"), Images: group.images})
		}
	}

	for _, p := range g.pages.List() {
		group := newImageGroup(g)
		group.add(p.FeaturedImage, p.Title)
		if meta, ok := g.meta(p.Slug); ok {
			group.add(meta.Hero.ImageURL, meta.Hero.Title)
		}
		body, err := g.render(p)
		if err != nil {
			return nil, err
		}
		for _, src := range ExtractImages(body) {
			group.add(src, "")
		}
		if len(group.images) > 0 {
			set.URLs = append(set.URLs, xmlURL{Loc: g.absolute(p.URLPath()), Images: group.images})
		}
	}
	return encode(set)
}

type imageGroup struct {
	g      *Generator
	seen   map[string]bool
	images []xmlImage
}

func newImageGroup(g *Generator) *imageGroup {
	return &imageGroup{g: g, seen: map[string]bool{}}
}

func (ig *imageGroup) add(raw, title string) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return
	}
	loc := ig.g.absolute(raw)
	if loc == "" || ig.seen[loc] {
		return
	}
	ig.seen[loc] = true
	ig.images = append(ig.images, xmlImage{Loc: loc, Title: strings.TrimSpace(title)})
}

// absolute resolves ref against the site base URL.
func (g *Generator) absolute(ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	return g.base.ResolveReference(u).String()
}

func classify(p pages.Page) (string, float64) {
	switch p.Slug {
	case "de", "en":
		return "weekly", 0.9
	case "kontakt", "contact", "anfahrt", "directions":
		return "monthly", 0.8
	case "impressum", "imprint", "datenschutz", "privacy-policy":
		return "yearly", 0.3
	}
	if p.Kind != "" && p.Kind != pages.KindPage {
		return "monthly", 0.5
	}
	return "monthly", 0.6
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("sitemap: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
