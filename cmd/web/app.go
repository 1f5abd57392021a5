package main

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/config"
	"github.com/vuducle/le-custom-sub000/internal/consent"
	"github.com/vuducle/le-custom-sub000/internal/contact"
	"github.com/vuducle/le-custom-sub000/internal/content"
	"github.com/vuducle/le-custom-sub000/internal/i18n"
	"github.com/vuducle/le-custom-sub000/internal/media"
	"github.com/vuducle/le-custom-sub000/internal/nonce"
	"github.com/vuducle/le-custom-sub000/internal/observability"
	"github.com/vuducle/le-custom-sub000/internal/pages"
	"github.com/vuducle/le-custom-sub000/internal/recaptcha"
	"github.com/vuducle/le-custom-sub000/internal/routing"
	"github.com/vuducle/le-custom-sub000/internal/settings"
)

// app holds the wired site components shared by all handlers.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	renderer  *renderer
	bundle    *i18n.Bundle
	settings  settings.Store
	pages     *pages.Repository
	meta      *pages.MetaStore
	media     media.Library
	router    *routing.Router
	nonces    *nonce.Manager
	recaptcha recaptcha.Verifier
	contact   *contact.Service
	now       func() time.Time
}

type appDeps struct {
	Config    config.Config
	Logger    *zap.Logger
	Bundle    *i18n.Bundle
	Settings  settings.Store
	Pages     *pages.Repository
	Media     media.Library
	Nonces    *nonce.Manager
	Recaptcha recaptcha.Verifier
	Contact   *contact.Service
}

func newApp(deps appDeps) (*app, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r, err := newRenderer(deps.Config.Site.TemplatesDir, deps.Config.Server.DevMode, deps.Bundle)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:       deps.Config,
		logger:    logger,
		renderer:  r,
		bundle:    deps.Bundle,
		settings:  deps.Settings,
		pages:     deps.Pages,
		meta:      pages.NewMetaStore(deps.Settings),
		media:     deps.Media,
		router:    routing.New(deps.Pages),
		nonces:    deps.Nonces,
		recaptcha: deps.Recaptcha,
		contact:   deps.Contact,
		now:       time.Now,
	}, nil
}

// contactSource reads the current practice contact block from store.
func contactSource(store settings.Store, logger *zap.Logger) func(context.Context) content.ContactData {
	return func(ctx context.Context) content.ContactData {
		return content.New(settings.Snapshot(ctx, store, requestLogger(ctx, logger))).Contact()
	}
}

func (a *app) contactData(ctx context.Context) content.ContactData {
	return contactSource(a.settings, a.logger)(ctx)
}

func (a *app) values(ctx context.Context) settings.Values {
	return settings.Snapshot(ctx, a.settings, requestLogger(ctx, a.logger))
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(forwardedFor(a.cfg.Server.TrustedProxyHops))
	r.Use(middleware.GetHead)
	r.Use(observability.InjectLoggerMiddleware(a.logger))
	r.Use(observability.TraceMiddleware)
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.RecoveryMiddleware(a.logger))
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(consent.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	publicDir := a.cfg.Site.PublicDir
	r.Handle("/assets/*", http.StripPrefix("/assets", newStaticFiles(filepath.Join(publicDir, "assets"), assetMaxAge)))
	r.Handle("/uploads/*", http.StripPrefix("/uploads", newStaticFiles(a.cfg.Media.Dir, uploadMaxAge)))

	r.Get("/sitemap.xml", a.handleSitemapIndex)
	r.Get("/sitemap-pages.xml", a.handleSitemapPages)
	r.Get("/sitemap-images.xml", a.handleSitemapImages)

	r.Route("/ajax", func(r chi.Router) {
		r.Post("/", a.handleAjax)
		r.Get("/nonce", a.requireAdmin(a.handleNonce))
		r.Post("/{action}", func(w http.ResponseWriter, req *http.Request) {
			a.dispatch(w, req, chi.URLParam(req, "action"))
		})
	})

	r.Get("/*", a.handlePage)
	r.NotFound(a.handleNotFound)
	return r
}
