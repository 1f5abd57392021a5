package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/pages"
	"github.com/vuducle/le-custom-sub000/internal/sitemap"
)

func (a *app) sitemapGenerator(r *http.Request) (*sitemap.Generator, error) {
	values := a.values(r.Context())
	return sitemap.New(a.cfg.Site.BaseURL, a.pages, a.media, sitemap.WithMeta(func(slug string) (pages.Meta, bool) {
		return pages.FromValues(values, slug)
	}))
}

func (a *app) serveSitemap(w http.ResponseWriter, r *http.Request, build func(g *sitemap.Generator) ([]byte, error)) {
	g, err := a.sitemapGenerator(r)
	if err == nil {
		var body []byte
		body, err = build(g)
		if err == nil {
			w.Header().Set("Content-Type", "application/xml; charset=utf-8")
			w.Header().Set("Cache-Control", "public, max-age=3600")
			_, _ = w.Write(body)
			return
		}
	}
	requestLogger(r.Context(), a.logger).Error("sitemap generation failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (a *app) handleSitemapIndex(w http.ResponseWriter, r *http.Request) {
	a.serveSitemap(w, r, func(g *sitemap.Generator) ([]byte, error) { return g.Index() })
}

func (a *app) handleSitemapPages(w http.ResponseWriter, r *http.Request) {
	a.serveSitemap(w, r, func(g *sitemap.Generator) ([]byte, error) { return g.Pages() })
}

func (a *app) handleSitemapImages(w http.ResponseWriter, r *http.Request) {
	a.serveSitemap(w, r, func(g *sitemap.Generator) ([]byte, error) { return g.Images(r.Context()) })
}
