package seo

import (
	"encoding/json"
	"html/template"

	"github.com/vuducle/le-custom-sub000/internal/content"
)

// JSON marshals v for a <script type="application/ld+json"> block. It returns
// an empty string on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Dentist returns the schema.org Dentist payload for the practice, including
// openingHoursSpecification parsed from the free-text hours.
func Dentist(c content.ContactData, hours []content.DayHours, siteURL, imageURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Dentist",
		"name":     c.PracticeName,
	}
	if siteURL != "" {
		m["url"] = siteURL
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if c.Phone.Display != "" {
		m["telephone"] = c.Phone.Display
	}
	if c.Email != "" {
		m["email"] = c.Email
	}
	if c.Address.Street != "" || c.Address.City != "" {
		m["address"] = map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   c.Address.Street,
			"postalCode":      c.Address.Zip,
			"addressLocality": c.Address.City,
			"addressCountry":  countryCode(c.Address.Country),
		}
	}
	if c.Map.Lat != "" && c.Map.Lng != "" {
		m["geo"] = map[string]any{
			"@type":     "GeoCoordinates",
			"latitude":  c.Map.Lat,
			"longitude": c.Map.Lng,
		}
	}
	var specs []map[string]any
	for _, day := range hours {
		for _, iv := range day.Intervals {
			specs = append(specs, map[string]any{
				"@type":     "OpeningHoursSpecification",
				"dayOfWeek": day.SchemaDay(),
				"opens":     iv.Opens,
				"closes":    iv.Closes,
			})
		}
	}
	if len(specs) > 0 {
		m["openingHoursSpecification"] = specs
	}
	return m
}

func countryCode(country string) string {
	switch country {
	case "Deutschland", "Germany", "DE", "":
		return "DE"
	case "Österreich", "Austria", "AT":
		return "AT"
	case "Schweiz", "Switzerland", "CH":
		return "CH"
	}
	return country
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url, lang string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if lang != "" {
		m["inLanguage"] = lang
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}
