package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile               = ".env"
	defaultPort                  = "8080"
	defaultReadTimeout           = 15 * time.Second
	defaultWriteTimeout          = 30 * time.Second
	defaultIdleTimeout           = 120 * time.Second
	defaultEnvironment           = "local"
	defaultBaseURL               = "http://localhost:8080"
	defaultTemplatesDir          = "templates"
	defaultPublicDir             = "public"
	defaultContentDir            = "content"
	defaultLocalesDir            = "locales"
	defaultSettingsBackend       = "file"
	defaultSettingsFile          = "data/settings.yaml"
	defaultCollectionPrefix      = "praxis"
	defaultMediaDir              = "public/uploads"
	defaultMediaURLPrefix        = "/uploads"
	defaultRecaptchaThreshold    = 0.5
	defaultRecaptchaVerifyURL    = "https://www.google.com/recaptcha/api/siteverify"
	defaultRecaptchaTimeout      = 5 * time.Second
	defaultSMTPPort              = 587
	defaultSMTPTLSPolicy         = "mandatory"
	defaultMailTimeout           = 15 * time.Second
	defaultNonceTTL              = 24 * time.Hour
	defaultContactRateLimit      = 5
	defaultContactRateWindow     = 10 * time.Minute
	defaultLogLevel              = "info"
	secretReferencePrefix        = "secret://"
	secretManagerReferencePrefix = "sm://"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Settings  SettingsConfig
	Firestore FirestoreConfig
	Media     MediaConfig
	Recaptcha RecaptchaConfig
	Mail      MailConfig
	Nonce     NonceConfig
	Admin     AdminConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	DevMode      bool

	// TrustedProxyHops is the number of reverse proxies in front of the
	// server that append to X-Forwarded-For. Zero uses the socket peer.
	TrustedProxyHops int
}

// SiteConfig locates site resources and the public base URL.
type SiteConfig struct {
	BaseURL      string
	Environment  string
	TemplatesDir string
	PublicDir    string
	ContentDir   string
	LocalesDir   string
}

// SettingsConfig selects the key-value settings backend.
type SettingsConfig struct {
	Backend  string // memory | file | firestore
	File     string
	SeedFile string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID        string
	CollectionPrefix string
}

// MediaConfig locates image attachments: a local directory or a GCS bucket.
type MediaConfig struct {
	Dir       string
	URLPrefix string
	Bucket    string
	BucketURL string
}

// RecaptchaConfig holds reCAPTCHA v3 keys. Empty keys disable verification.
type RecaptchaConfig struct {
	SiteKey   string
	SecretKey string
	Threshold float64
	VerifyURL string
	Timeout   time.Duration
}

// Enabled reports whether both keys are configured.
func (c RecaptchaConfig) Enabled() bool {
	return strings.TrimSpace(c.SiteKey) != "" && strings.TrimSpace(c.SecretKey) != ""
}

// MailConfig configures the SMTP transport.
type MailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	FromName  string
	Recipient string
	TLSPolicy string // mandatory | opportunistic | none
	Timeout   time.Duration
}

// NonceConfig configures action nonces.
type NonceConfig struct {
	SigningKey string
	TTL        time.Duration
}

// AdminConfig guards the customizer/meta AJAX actions.
type AdminConfig struct {
	Token string
}

// RedisConfig enables the shared rate limiter when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig controls contact form throttling per client IP.
type RateLimitConfig struct {
	ContactPerWindow int
	ContactWindow    time.Duration
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map. Values in the map take
// precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for sm:// and secret:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// Load assembles configuration from defaults, .env overrides, environment
// variables and optional secret manager lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "PRAXIS_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:  durationWithDefault(lookup, "PRAXIS_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "PRAXIS_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "PRAXIS_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			DevMode:      boolWithDefault(lookup, "PRAXIS_DEV", false),

			TrustedProxyHops: intWithDefault(lookup, "PRAXIS_TRUSTED_PROXY_HOPS", 0),
		},
		Site: SiteConfig{
			BaseURL:      strings.TrimRight(stringWithDefault(lookup, "PRAXIS_BASE_URL", defaultBaseURL), "/"),
			Environment:  strings.ToLower(stringWithDefault(lookup, "PRAXIS_ENV", defaultEnvironment)),
			TemplatesDir: stringWithDefault(lookup, "PRAXIS_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    stringWithDefault(lookup, "PRAXIS_PUBLIC_DIR", defaultPublicDir),
			ContentDir:   stringWithDefault(lookup, "PRAXIS_CONTENT_DIR", defaultContentDir),
			LocalesDir:   stringWithDefault(lookup, "PRAXIS_LOCALES_DIR", defaultLocalesDir),
		},
		Settings: SettingsConfig{
			Backend:  strings.ToLower(stringWithDefault(lookup, "PRAXIS_SETTINGS_BACKEND", defaultSettingsBackend)),
			File:     stringWithDefault(lookup, "PRAXIS_SETTINGS_FILE", defaultSettingsFile),
			SeedFile: stringWithDefault(lookup, "PRAXIS_SETTINGS_SEED", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:        stringWithDefault(lookup, "PRAXIS_FIRESTORE_PROJECT_ID", ""),
			CollectionPrefix: stringWithDefault(lookup, "PRAXIS_FIRESTORE_COLLECTION_PREFIX", defaultCollectionPrefix),
		},
		Media: MediaConfig{
			Dir:       stringWithDefault(lookup, "PRAXIS_MEDIA_DIR", defaultMediaDir),
			URLPrefix: stringWithDefault(lookup, "PRAXIS_MEDIA_URL_PREFIX", defaultMediaURLPrefix),
			Bucket:    stringWithDefault(lookup, "PRAXIS_MEDIA_BUCKET", ""),
			BucketURL: stringWithDefault(lookup, "PRAXIS_MEDIA_BUCKET_URL", ""),
		},
		Recaptcha: RecaptchaConfig{
			SiteKey:   stringWithDefault(lookup, "PRAXIS_RECAPTCHA_SITE_KEY", ""),
			SecretKey: stringWithDefault(lookup, "PRAXIS_RECAPTCHA_SECRET_KEY", ""),
			Threshold: floatWithDefault(lookup, "PRAXIS_RECAPTCHA_THRESHOLD", defaultRecaptchaThreshold),
			VerifyURL: stringWithDefault(lookup, "PRAXIS_RECAPTCHA_VERIFY_URL", defaultRecaptchaVerifyURL),
			Timeout:   durationWithDefault(lookup, "PRAXIS_RECAPTCHA_TIMEOUT", defaultRecaptchaTimeout),
		},
		Mail: MailConfig{
			Host:      stringWithDefault(lookup, "PRAXIS_SMTP_HOST", ""),
			Port:      intWithDefault(lookup, "PRAXIS_SMTP_PORT", defaultSMTPPort),
			Username:  stringWithDefault(lookup, "PRAXIS_SMTP_USERNAME", ""),
			Password:  stringWithDefault(lookup, "PRAXIS_SMTP_PASSWORD", ""),
			From:      stringWithDefault(lookup, "PRAXIS_MAIL_FROM", ""),
			FromName:  stringWithDefault(lookup, "PRAXIS_MAIL_FROM_NAME", ""),
			Recipient: stringWithDefault(lookup, "PRAXIS_MAIL_RECIPIENT", ""),
			TLSPolicy: strings.ToLower(stringWithDefault(lookup, "PRAXIS_SMTP_TLS", defaultSMTPTLSPolicy)),
			Timeout:   durationWithDefault(lookup, "PRAXIS_SMTP_TIMEOUT", defaultMailTimeout),
		},
		Nonce: NonceConfig{
			SigningKey: stringWithDefault(lookup, "PRAXIS_NONCE_KEY", ""),
			TTL:        durationWithDefault(lookup, "PRAXIS_NONCE_TTL", defaultNonceTTL),
		},
		Admin: AdminConfig{
			Token: stringWithDefault(lookup, "PRAXIS_ADMIN_TOKEN", ""),
		},
		Redis: RedisConfig{
			Addr:     stringWithDefault(lookup, "PRAXIS_REDIS_ADDR", ""),
			Password: stringWithDefault(lookup, "PRAXIS_REDIS_PASSWORD", ""),
			DB:       intWithDefault(lookup, "PRAXIS_REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			ContactPerWindow: intWithDefault(lookup, "PRAXIS_CONTACT_RATE_LIMIT", defaultContactRateLimit),
			ContactWindow:    durationWithDefault(lookup, "PRAXIS_CONTACT_RATE_WINDOW", defaultContactRateWindow),
		},
		LogLevel: stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	secretFields := []struct {
		name  string
		field *string
	}{
		{"Recaptcha.SecretKey", &cfg.Recaptcha.SecretKey},
		{"Mail.Password", &cfg.Mail.Password},
		{"Nonce.SigningKey", &cfg.Nonce.SigningKey},
		{"Admin.Token", &cfg.Admin.Token},
		{"Redis.Password", &cfg.Redis.Password},
	}
	for _, target := range secretFields {
		resolved, err := resolveSecret(ctx, *target.field, options.secret)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", target.name, err)
		}
		*target.field = resolved
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the site runs in the prod environment.
func (c Config) IsProduction() bool {
	return c.Site.Environment == "prod" || c.Site.Environment == "production"
}

// IsSecretReference reports whether value points to an external secret.
func IsSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, secretReferencePrefix) || strings.HasPrefix(trimmed, secretManagerReferencePrefix)
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if value == "" || !IsSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return strings.TrimSpace(secret), nil
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, secretManagerReferencePrefix) {
		return secretReferencePrefix + strings.TrimPrefix(trimmed, secretManagerReferencePrefix)
	}
	return trimmed
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	}
	if u, err := url.Parse(cfg.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "Site.BaseURL")
	}
	switch cfg.Settings.Backend {
	case "memory", "file":
	case "firestore":
		if cfg.Firestore.ProjectID == "" {
			invalid = append(invalid, "Firestore.ProjectID")
		}
	default:
		invalid = append(invalid, "Settings.Backend")
	}
	if cfg.Settings.Backend == "file" && strings.TrimSpace(cfg.Settings.File) == "" {
		invalid = append(invalid, "Settings.File")
	}
	if cfg.Server.TrustedProxyHops < 0 {
		invalid = append(invalid, "Server.TrustedProxyHops")
	}
	if cfg.Recaptcha.Threshold < 0 || cfg.Recaptcha.Threshold > 1 {
		invalid = append(invalid, "Recaptcha.Threshold")
	}
	switch cfg.Mail.TLSPolicy {
	case "mandatory", "opportunistic", "none":
	default:
		invalid = append(invalid, "Mail.TLSPolicy")
	}
	if cfg.Mail.Host != "" && cfg.Mail.From == "" {
		invalid = append(invalid, "Mail.From")
	}
	if cfg.Nonce.TTL <= 0 {
		invalid = append(invalid, "Nonce.TTL")
	}
	if cfg.RateLimit.ContactPerWindow < 0 {
		invalid = append(invalid, "RateLimit.ContactPerWindow")
	}
	if cfg.IsProduction() {
		if cfg.Nonce.SigningKey == "" {
			invalid = append(invalid, "Nonce.SigningKey")
		}
		if cfg.Mail.Host == "" {
			invalid = append(invalid, "Mail.Host")
		}
	}

	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
