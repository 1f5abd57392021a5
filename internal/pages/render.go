package pages

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	bodyPolicy  = newBodyPolicy()
	stripPolicy = bluemonday.StrictPolicy()
)

func newBodyPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("section", "figure", "figcaption")
	policy.AllowAttrs("class").Globally()
	policy.AllowAttrs("loading").OnElements("img")
	policy.AllowAttrs("style").Matching(regexp.MustCompile(`^[\w\s:;#.,%()'"/-]*$`)).OnElements("div", "section", "span", "p")
	policy.RequireNoFollowOnLinks(false)
	return policy
}

// RenderBody converts the page body to sanitized HTML.
func RenderBody(p Page) (template.HTML, error) {
	var raw string
	switch p.Format {
	case formatHTML:
		raw = p.Body
	default:
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(p.Body), &buf); err != nil {
			return "", fmt.Errorf("pages: render %s: %w", p.Slug, err)
		}
		raw = buf.String()
	}
	return template.HTML(strings.TrimSpace(bodyPolicy.Sanitize(raw))), nil
}

// PlainText strips all markup and collapses whitespace.
func PlainText(s string) string {
	return strings.Join(strings.Fields(stdhtml.UnescapeString(stripPolicy.Sanitize(s))), " ")
}
