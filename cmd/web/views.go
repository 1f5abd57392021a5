package main

import (
	"context"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/consent"
	"github.com/vuducle/le-custom-sub000/internal/contact"
	"github.com/vuducle/le-custom-sub000/internal/content"
	"github.com/vuducle/le-custom-sub000/internal/i18n"
	"github.com/vuducle/le-custom-sub000/internal/nav"
	"github.com/vuducle/le-custom-sub000/internal/pages"
	"github.com/vuducle/le-custom-sub000/internal/requestctx"
	"github.com/vuducle/le-custom-sub000/internal/routing"
	"github.com/vuducle/le-custom-sub000/internal/seo"
)

const templateNotFound = "not_found"

// counterparts links special pages to their translation.
var counterparts = map[string]string{
	"de":             "en",
	"en":             "de",
	"kontakt":        "contact",
	"contact":        "kontakt",
	"impressum":      "imprint",
	"imprint":        "impressum",
	"datenschutz":    "privacy-policy",
	"privacy-policy": "datenschutz",
	"anfahrt":        "directions",
	"directions":     "anfahrt",
}

// pageView is the view model handed to the base layout.
type pageView struct {
	Lang     string
	Locale   string
	Template string
	Path     string
	Year     int

	Page     pages.Page
	Body     template.HTML
	Hero     content.HeroData
	HasHero  bool
	About    []content.AboutBlock
	Contact  content.ContactData
	Colors   content.ColorScheme
	Services []content.ServiceEntry
	CTA      content.CTAData
	Hours    []content.DayHours

	MapEmbedURL   string
	DirectionsURL string
	AnalyticsID   string
	ConsentGiven  bool

	SEO         seo.Meta
	JSONLD      []template.JS
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Alternates  []seo.Alternate

	ContactNonce     string
	ConsentNonce     string
	RecaptchaSiteKey string
}

// buildView resolves everything a template needs for page p. p is the zero
// Page for the not-found view.
func (a *app) buildView(ctx context.Context, r *http.Request, tmpl, lang string, p pages.Page) (pageView, error) {
	values := a.values(ctx)
	res := content.New(values)
	lang = i18n.Normalize(lang)
	c := res.Contact()

	v := pageView{
		Lang:          lang,
		Locale:        i18n.Locale(lang),
		Template:      tmpl,
		Path:          r.URL.Path,
		Year:          a.now().Year(),
		Page:          p,
		Contact:       c,
		Colors:        res.Colors(),
		Services:      res.Services(lang),
		CTA:           res.CTA(lang),
		Hours:         res.OpeningHours(lang),
		MapEmbedURL:   res.MapEmbedURL(),
		DirectionsURL: res.DirectionsURL(),
		AnalyticsID:   res.AnalyticsID(),
		ConsentGiven:  consent.FromContext(ctx).Given(),
		Nav:           nav.Build(lang, r.URL.Path),
	}
	if a.recaptcha != nil && a.recaptcha.Enabled() {
		v.RecaptchaSiteKey = a.recaptcha.SiteKey()
	}

	if p.Slug != "" {
		body, err := pages.RenderBody(p)
		if err != nil {
			return pageView{}, err
		}
		v.Body = body
	}

	meta, hasMeta := pages.FromValues(values, p.Slug)
	switch {
	case tmpl == routing.TemplateLanding:
		v.Hero = res.Hero(lang)
		v.HasHero = true
		v.About = []content.AboutBlock{res.About(lang)}
		if hasMeta && len(meta.About) > 0 {
			v.About = meta.About
		}
	case hasMeta:
		v.Hero = meta.Hero
		v.HasHero = meta.Hero.Title != "" || meta.Hero.ImageURL != "" || meta.Hero.VideoURL != ""
		v.About = meta.About
	}

	if tmpl == routing.TemplateContact {
		v.ContactNonce = a.issueNonce(ctx, contact.NonceAction)
	}
	if !v.ConsentGiven {
		v.ConsentNonce = a.issueNonce(ctx, consentNonceAction)
	}

	a.applySEO(&v, meta, hasMeta)
	return v, nil
}

func (a *app) applySEO(v *pageView, meta pages.Meta, hasMeta bool) {
	base := a.cfg.Site.BaseURL
	name := v.Contact.PracticeName

	in := seoInput{
		PageTitle:    v.Page.Title,
		HeroSubtitle: v.Hero.Subtitle,
		Summary:      v.Page.Summary,
		Body:         string(v.Body),
		Fallback:     a.bundle.T(v.Lang, "site.description"),
		SiteName:     name,
	}
	if in.PageTitle == "" {
		in.PageTitle = a.bundle.T(v.Lang, "notfound.title")
	}
	if hasMeta {
		in.MetaDescription = meta.MetaDescription
		in.SEOTitle = meta.SEOTitle
	}
	title, description := in.resolve()

	canonical := ""
	if v.Page.Slug != "" {
		canonical = base + v.Page.URLPath()
	}
	image := v.Page.FeaturedImage
	if image == "" {
		image = v.Hero.ImageURL
	}
	if strings.HasPrefix(image, "/") {
		image = base + image
	}
	v.SEO = seo.NewMeta(title, description, canonical, image, v.Locale, name)
	if v.Template == templateNotFound {
		v.SEO.Robots = "noindex,follow"
	}

	if other, ok := counterparts[v.Page.Slug]; ok {
		if alt, err := a.pages.Get(other); err == nil {
			v.Alternates = []seo.Alternate{
				{Lang: v.Lang, Href: canonical},
				{Lang: i18n.Normalize(alt.Lang), Href: base + alt.URLPath()},
			}
		}
	}

	v.Breadcrumbs = nav.Breadcrumbs(v.Lang, v.Path, v.Page.Title)
	v.JSONLD = append(v.JSONLD, seo.JSON(seo.Dentist(v.Contact, v.Hours, base+"/", image)))
	if v.Template == routing.TemplateLanding {
		v.JSONLD = append(v.JSONLD, seo.JSON(seo.WebSite(name, base+"/", v.Lang)))
	} else if len(v.Breadcrumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(v.Breadcrumbs))
		for _, c := range v.Breadcrumbs {
			label := c.Label
			if c.LabelKey != "" {
				label = a.bundle.T(v.Lang, c.LabelKey)
			}
			items = append(items, seo.BreadcrumbItem{Name: label, Item: base + c.Href})
		}
		v.JSONLD = append(v.JSONLD, seo.JSON(seo.BreadcrumbList(items)))
	}
}

// seoInput collects the sources for a page's document title and meta description.
type seoInput struct {
	PageTitle       string
	SEOTitle        string
	MetaDescription string
	HeroSubtitle    string
	Summary         string
	Body            string
	Fallback        string
	SiteName        string
}

// resolve picks the first non-empty description source and builds the title
// around it. An explicit SEO title wins over the generated one.
func (in seoInput) resolve() (string, string) {
	description := seo.Description(in.MetaDescription, in.HeroSubtitle, in.Summary, in.Body, in.Fallback)
	if in.SEOTitle != "" {
		return seo.Truncate(in.SEOTitle, seo.MaxTitleLength), description
	}
	return seo.Title(in.PageTitle, description, in.SiteName), description
}

func (a *app) issueNonce(ctx context.Context, action string) string {
	value, err := a.nonces.Issue(action)
	if err != nil {
		requestLogger(ctx, a.logger).Warn("nonce issue failed", zap.String("action", action), zap.Error(err))
		return ""
	}
	return value
}

// requestLogger prefers the request-scoped logger over fallback.
func requestLogger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger := requestctx.Logger(ctx); logger != requestctx.NoopLogger() {
		return logger
	}
	return fallback
}
