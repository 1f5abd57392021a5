package seo

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// MaxTitleLength bounds generated document titles, in runes.
	MaxTitleLength = 70
	// MaxDescriptionLength bounds meta descriptions, in runes.
	MaxDescriptionLength = 160

	titleSeparator = " - "
	ellipsis       = "…"
)

var stripPolicy = bluemonday.StrictPolicy()

// Title composes "{title} - {description} - {name}" within MaxTitleLength runes.
// Candidates are tried in order: description cut to 60 runes, to 40 runes,
// no description, then a truncated title. An empty description skips the
// description candidates.
func Title(pageTitle, description, practiceName string) string {
	pageTitle = collapse(pageTitle)
	description = collapse(description)
	practiceName = collapse(practiceName)

	if pageTitle == "" {
		return Truncate(practiceName, MaxTitleLength)
	}
	if practiceName == "" {
		return Truncate(pageTitle, MaxTitleLength)
	}

	var candidates []string
	if description != "" {
		candidates = append(candidates,
			join(pageTitle, Truncate(description, 60), practiceName),
			join(pageTitle, Truncate(description, 40), practiceName),
		)
	}
	candidates = append(candidates, join(pageTitle, practiceName))
	for _, c := range candidates {
		if utf8.RuneCountInString(c) <= MaxTitleLength {
			return c
		}
	}

	budget := MaxTitleLength - utf8.RuneCountInString(titleSeparator+practiceName)
	if budget < 1 {
		return Truncate(practiceName, MaxTitleLength)
	}
	return join(Truncate(pageTitle, budget), practiceName)
}

// Description returns the first non-empty source with markup stripped,
// whitespace collapsed and cut to MaxDescriptionLength runes.
func Description(sources ...string) string {
	for _, s := range sources {
		if text := StripHTML(s); text != "" {
			return Truncate(text, MaxDescriptionLength)
		}
	}
	return ""
}

// StripHTML removes all tags and collapses whitespace.
func StripHTML(s string) string {
	return collapse(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// Truncate shortens s to at most limit runes, cutting on a word boundary when
// possible and appending an ellipsis. The ellipsis counts towards the limit.
func Truncate(s string, limit int) string {
	s = collapse(s)
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit == 1 {
		return ellipsis
	}
	runes := []rune(s)
	cut := string(runes[:limit-1])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	cut = strings.TrimRight(cut, " ,;:-–")
	return cut + ellipsis
}

func join(parts ...string) string {
	return strings.Join(parts, titleSeparator)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

