package i18n

import "strings"

type marker struct {
	lang  string
	match func(path, lastSegment string) bool
}

// markers are evaluated in order; the first hit decides.
var markers = []marker{
	{"de", func(p, _ string) bool { return strings.Contains(p, "/de/") }},
	{"en", func(p, _ string) bool { return strings.Contains(p, "/en/") }},
	{"de", func(_, seg string) bool { return strings.HasSuffix(seg, "-de") }},
	{"en", func(_, seg string) bool { return strings.HasSuffix(seg, "-en") }},
	{"de", func(p, _ string) bool { return strings.Contains(p, "deutsch") }},
	{"en", func(p, _ string) bool { return strings.Contains(p, "english") }},
}

// Detect picks the page language from a request path. Query strings and
// fragments are ignored, matching is case-insensitive and paths without any
// language marker are German.
func Detect(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	p := strings.ToLower(path)
	if p == "/de" || p == "/en" {
		p += "/"
	}
	seg := lastSegment(p)
	for _, m := range markers {
		if m.match(p, seg) {
			return m.lang
		}
	}
	return Default
}

func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
