package main

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/i18n"
	"github.com/vuducle/le-custom-sub000/internal/pages"
	"github.com/vuducle/le-custom-sub000/internal/requestctx"
	"github.com/vuducle/le-custom-sub000/internal/routing"
)

const templatePage = "page"

// knownTemplates are the page templates a front matter hint may select.
var knownTemplates = map[string]bool{
	routing.TemplateLanding:    true,
	routing.TemplateContact:    true,
	routing.TemplateImprint:    true,
	routing.TemplatePrivacy:    true,
	routing.TemplateDirections: true,
	templatePage:               true,
}

// handlePage resolves the template for the request path and renders it.
func (a *app) handlePage(w http.ResponseWriter, r *http.Request) {
	route := a.router.Resolve(r.URL.Path)
	if !route.Fallthrough {
		p, err := a.pages.Get(route.Slug)
		if err != nil {
			a.handleNotFound(w, r)
			return
		}
		a.renderPage(w, r, http.StatusOK, route.Template, route.Lang, p)
		return
	}

	p, ok := a.lookupPage(r.URL.Path, route.Slug)
	if !ok {
		a.handleNotFound(w, r)
		return
	}
	tmpl := templatePage
	if hint := strings.ToLower(strings.TrimSpace(p.Template)); knownTemplates[hint] {
		tmpl = hint
	}
	lang := p.Lang
	if lang == "" {
		lang = route.Lang
	}
	a.renderPage(w, r, http.StatusOK, tmpl, lang, p)
}

// lookupPage finds the published page whose URL path matches path, ignoring
// a missing trailing slash.
func (a *app) lookupPage(path, slug string) (pages.Page, bool) {
	if slug == "" {
		return pages.Page{}, false
	}
	p, err := a.pages.Get(slug)
	if err != nil {
		return pages.Page{}, false
	}
	if strings.TrimSuffix(p.URLPath(), "/") != strings.TrimSuffix(strings.ToLower(path), "/") {
		return pages.Page{}, false
	}
	return p, true
}

func (a *app) handleNotFound(w http.ResponseWriter, r *http.Request) {
	a.renderPage(w, r, http.StatusNotFound, templateNotFound, i18n.Detect(r.URL.Path), pages.Page{})
}

func (a *app) renderPage(w http.ResponseWriter, r *http.Request, status int, tmpl, lang string, p pages.Page) {
	view, err := a.buildView(r.Context(), r, tmpl, lang, p)
	if err != nil {
		requestctx.Logger(r.Context()).Error("build page view failed", zap.String("slug", p.Slug), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	a.renderer.render(w, r, status, view)
}
