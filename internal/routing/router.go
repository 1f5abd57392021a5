// Package routing maps request paths onto page templates.
package routing

import (
	"strings"

	"github.com/vuducle/le-custom-sub000/internal/i18n"
)

// Template names rendered by the web server.
const (
	TemplateLanding    = "landing"
	TemplateContact    = "contact"
	TemplateImprint    = "imprint"
	TemplatePrivacy    = "privacy"
	TemplateDirections = "directions"
)

// Pages reports whether a page record exists for a slug.
type Pages interface {
	Exists(slug string) bool
}

// PagesFunc adapts a function to Pages.
type PagesFunc func(slug string) bool

func (f PagesFunc) Exists(slug string) bool { return f(slug) }

// Route is the routing decision for one request path.
type Route struct {
	Template    string
	Lang        string
	Slug        string
	Fallthrough bool
}

var landingPaths = map[string]string{
	"/de/": "de",
	"/de":  "de",
	"/en/": "en",
	"/en":  "en",
}

// SpecialSlugs maps page slugs onto their dedicated templates and languages.
var SpecialSlugs = map[string]Route{
	"kontakt":        {Template: TemplateContact, Lang: "de"},
	"contact":        {Template: TemplateContact, Lang: "en"},
	"impressum":      {Template: TemplateImprint, Lang: "de"},
	"imprint":        {Template: TemplateImprint, Lang: "en"},
	"datenschutz":    {Template: TemplatePrivacy, Lang: "de"},
	"privacy-policy": {Template: TemplatePrivacy, Lang: "en"},
	"anfahrt":        {Template: TemplateDirections, Lang: "de"},
	"directions":     {Template: TemplateDirections, Lang: "en"},
}

// Router resolves paths against the page repository.
type Router struct {
	pages Pages
}

func New(pages Pages) *Router {
	return &Router{pages: pages}
}

// Resolve picks a template for uri. Missing page records never produce an
// error; the route falls through to default resolution instead.
func (r *Router) Resolve(uri string) Route {
	path := uri
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == "/" {
		if r.exists("de") {
			return Route{Template: TemplateLanding, Lang: "de", Slug: "de"}
		}
		return Route{Fallthrough: true, Lang: i18n.Default}
	}
	if lang, ok := landingPaths[path]; ok {
		if r.exists(lang) {
			return Route{Template: TemplateLanding, Lang: lang, Slug: lang}
		}
		return Route{Fallthrough: true, Lang: lang, Slug: lang}
	}

	slug := LastSegment(path)
	lang := i18n.Detect(path)
	if special, ok := SpecialSlugs[slug]; ok && r.exists(slug) {
		special.Slug = slug
		return special
	}
	return Route{Fallthrough: true, Lang: lang, Slug: slug}
}

func (r *Router) exists(slug string) bool {
	return r.pages != nil && r.pages.Exists(slug)
}

// LastSegment returns the final non-empty path segment, lower-cased.
func LastSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return strings.ToLower(path)
}
