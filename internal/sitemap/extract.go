package sitemap

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var backgroundImage = regexp.MustCompile(`(?i)background(?:-image)?\s*:[^;"]*url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// ExtractImages returns image URLs referenced by <img src> and CSS
// background-image declarations, in document order with duplicates removed.
func ExtractImages(body string) []string {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	add := func(src string) {
		src = strings.TrimSpace(src)
		if src == "" || seen[src] {
			return
		}
		seen[src] = true
		out = append(out, src)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
			src, _ := s.Attr("src")
			add(src)
		})
	}
	for _, m := range backgroundImage.FindAllStringSubmatch(html.UnescapeString(body), -1) {
		add(m[1])
	}
	return out
}
