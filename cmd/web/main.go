package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/config"
	"github.com/vuducle/le-custom-sub000/internal/contact"
	"github.com/vuducle/le-custom-sub000/internal/firestore"
	"github.com/vuducle/le-custom-sub000/internal/i18n"
	"github.com/vuducle/le-custom-sub000/internal/mail"
	"github.com/vuducle/le-custom-sub000/internal/media"
	"github.com/vuducle/le-custom-sub000/internal/nonce"
	"github.com/vuducle/le-custom-sub000/internal/observability"
	"github.com/vuducle/le-custom-sub000/internal/pages"
	"github.com/vuducle/le-custom-sub000/internal/recaptcha"
	"github.com/vuducle/le-custom-sub000/internal/secrets"
	"github.com/vuducle/le-custom-sub000/internal/settings"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("PRAXIS_DEV") != "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("web")
	ctx = observability.WithLogger(ctx, logger)

	resolver := newSecretResolver(ctx, logger)
	defer func() {
		if err := resolver.Close(); err != nil {
			logger.Warn("secret resolver close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(config.SecretResolverFunc(resolver.Resolve)))
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	var provider *firestore.Provider
	if cfg.Firestore.ProjectID != "" {
		provider = firestore.NewProvider(cfg.Firestore)
		defer func() {
			if err := provider.Close(); err != nil {
				logger.Warn("firestore close error", zap.Error(err))
			}
		}()
	}

	store, err := settings.Open(ctx, cfg.Settings, provider)
	if err != nil {
		logger.Fatal("failed to open settings store", zap.Error(err))
	}

	repo, err := pages.Open(cfg.Site.ContentDir)
	if err != nil {
		logger.Fatal("failed to load pages", zap.Error(err))
	}

	library, err := media.Open(ctx, cfg.Media)
	if err != nil {
		logger.Fatal("failed to open media library", zap.Error(err))
	}
	if closer, ok := library.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("media library close error", zap.Error(err))
			}
		}()
	}

	bundle, err := i18n.Load(cfg.Site.LocalesDir, i18n.Default)
	if err != nil {
		logger.Fatal("failed to load locales", zap.Error(err))
	}

	nonces, err := nonce.New(cfg.Nonce.SigningKey, cfg.Nonce.TTL)
	if err != nil {
		logger.Fatal("failed to initialise nonces", zap.Error(err))
	}
	if cfg.Nonce.SigningKey == "" {
		logger.Warn("nonce: using ephemeral signing key; set PRAXIS_NONCE_KEY to keep nonces valid across restarts")
	}

	verifier := recaptcha.New(cfg.Recaptcha, logger.Named("recaptcha"))
	if !verifier.Enabled() {
		logger.Info("recaptcha not configured; contact form verification disabled")
	}
	transport := mail.New(cfg.Mail, logger.Named("mail"))

	limiter, closeLimiter := contact.NewRateLimiter(cfg.RateLimit, cfg.Redis)
	defer func() {
		if err := closeLimiter(); err != nil {
			logger.Warn("rate limiter close error", zap.Error(err))
		}
	}()

	var submissions contact.SubmissionStore = contact.NewMemoryStore()
	if provider != nil {
		submissions = contact.NewFirestoreStore(provider)
	}

	deps := appDeps{
		Config:    cfg,
		Logger:    logger,
		Bundle:    bundle,
		Settings:  store,
		Pages:     repo,
		Media:     library,
		Nonces:    nonces,
		Recaptcha: verifier,
	}
	deps.Contact = contact.NewService(nonces, verifier, transport, contactSource(store, logger),
		contact.WithRateLimiter(limiter),
		contact.WithStore(submissions),
		contact.WithRecipient(cfg.Mail.Recipient),
		contact.WithLogger(logger.Named("contact")),
	)

	site, err := newApp(deps)
	if err != nil {
		logger.Fatal("failed to initialise site", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + strings.TrimPrefix(cfg.Server.Port, ":"),
		Handler:           site.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr), zap.Bool("dev_mode", cfg.Server.DevMode))
	go func() {
		serverLogger.Info("praxis web listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newSecretResolver builds the Secret Manager resolver. Without a project it
// only reads the local fallback file.
func newSecretResolver(ctx context.Context, logger *zap.Logger) *secrets.Resolver {
	project := strings.TrimSpace(os.Getenv("PRAXIS_FIRESTORE_PROJECT_ID"))
	if project == "" {
		project = strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT"))
	}
	opts := []secrets.Option{secrets.WithLogger(logger.Named("secrets"))}
	if project == "" {
		opts = append(opts, secrets.Offline())
	} else {
		opts = append(opts, secrets.WithProject(project))
	}
	return secrets.NewResolver(ctx, opts...)
}
