package nav

import (
	"path"
	"strings"

	"github.com/vuducle/le-custom-sub000/internal/i18n"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/kontakt/"
	LabelKey string // i18n key, e.g. "nav.contact"
	// Anchor links point into the landing page and are never marked active.
	Anchor bool
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

var menus = map[string][]Item{
	"de": {
		{Path: "/de/", LabelKey: "nav.home"},
		{Path: "/de/#leistungen", LabelKey: "nav.services", Anchor: true},
		{Path: "/kontakt/", LabelKey: "nav.contact"},
		{Path: "/anfahrt/", LabelKey: "nav.directions"},
	},
	"en": {
		{Path: "/en/", LabelKey: "nav.home"},
		{Path: "/en/#services", LabelKey: "nav.services", Anchor: true},
		{Path: "/contact/", LabelKey: "nav.contact"},
		{Path: "/directions/", LabelKey: "nav.directions"},
	},
}

// Main returns the primary navigation definition for lang.
func Main(lang string) []Item {
	return menus[i18n.Normalize(lang)]
}

// Home returns the landing page path for lang.
func Home(lang string) string {
	return "/" + i18n.Normalize(lang) + "/"
}

// Build renders navigation items with active state given the current path.
func Build(lang, currentPath string) []RenderedItem {
	current := normalize(currentPath)
	if current == "/" {
		current = Home(lang)
	}
	main := Main(lang)
	items := make([]RenderedItem, 0, len(main))
	for _, it := range main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   !it.Anchor && normalize(it.Path) == current,
		})
	}
	return items
}

// Breadcrumbs builds breadcrumb entries from the current path.
// Rules:
// - Always start with the landing page of lang
// - Known menu entries use their label keys
// - The last segment uses title when given, else a prettified segment
func Breadcrumbs(lang, currentPath, title string) []Crumb {
	home := Home(lang)
	current := normalize(currentPath)
	if current == "/" {
		current = home
	}
	crumbs := []Crumb{{Href: home, LabelKey: "nav.home", Active: current == home}}
	if current == home {
		return crumbs
	}

	parts := strings.Split(strings.Trim(current, "/"), "/")
	href := "/"
	for i, seg := range parts {
		href += seg + "/"
		last := i == len(parts)-1
		c := Crumb{Href: href, Label: titleFromSegment(seg), Active: last}
		for _, it := range Main(lang) {
			if !it.Anchor && it.Path == href {
				c.LabelKey = it.LabelKey
			}
		}
		if last && title != "" {
			c.LabelKey = ""
			c.Label = title
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

// normalize cleans p and adds a trailing slash.
func normalize(p string) string {
	if p == "" {
		return "/"
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	clean := path.Clean("/" + p)
	if clean == "/" {
		return clean
	}
	return clean + "/"
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	// replace hyphens/underscores with spaces and capitalize first letter
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
