// Package seo builds document titles, meta descriptions, OpenGraph data and
// schema.org JSON-LD for rendered pages.
package seo

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	Locale      string
	SiteName    string
}

type Twitter struct {
	Card  string
	Image string
}

// Alternate links a page to its translation.
type Alternate struct {
	Lang string
	Href string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	Alternates  []Alternate
	OG          OpenGraph
	Twitter     Twitter
}

// NewMeta fills OpenGraph and Twitter fields from the base values.
func NewMeta(title, description, canonical, image, locale, siteName string) Meta {
	card := "summary"
	if image != "" {
		card = "summary_large_image"
	}
	return Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		Robots:      "index,follow",
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       image,
			Type:        "website",
			Locale:      locale,
			SiteName:    siteName,
		},
		Twitter: Twitter{Card: card, Image: image},
	}
}
