// Package secrets resolves secret:// references against Google Secret Manager,
// with an in-process cache and an optional local fallback file for development.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	referencePrefix     = "secret://"
	defaultVersion      = "latest"
	defaultFallbackPath = ".secrets.local"
)

// ErrInvalidReference is returned for references that cannot be parsed.
var ErrInvalidReference = errors.New("secrets: invalid reference")

// ErrNotFound is returned when neither Secret Manager nor the fallback file hold the secret.
var ErrNotFound = errors.New("secrets: not found")

type secretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

var secretManagerClientFactory = func(ctx context.Context, opts ...option.ClientOption) (secretManagerClient, error) {
	return secretmanager.NewClient(ctx, opts...)
}

// Resolver resolves secret references. It is safe for concurrent use.
type Resolver struct {
	client     secretManagerClient
	ownsClient bool
	projectID  string
	logger     *zap.Logger

	fallbackPath string
	fallbackOnce sync.Once
	fallback     map[string]string

	mu    sync.RWMutex
	cache map[string]string
}

type resolverConfig struct {
	projectID    string
	logger       *zap.Logger
	client       secretManagerClient
	clientOpts   []option.ClientOption
	fallbackPath string
	offline      bool
}

// Option customises Resolver construction.
type Option func(*resolverConfig)

// WithProject sets the default Google Cloud project for references without one.
func WithProject(projectID string) Option {
	return func(cfg *resolverConfig) { cfg.projectID = strings.TrimSpace(projectID) }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *resolverConfig) { cfg.logger = logger }
}

// WithClient injects a Secret Manager client (primarily for tests).
func WithClient(client secretManagerClient) Option {
	return func(cfg *resolverConfig) { cfg.client = client }
}

// WithClientOptions forwards client options to the Secret Manager client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(cfg *resolverConfig) { cfg.clientOpts = append(cfg.clientOpts, opts...) }
}

// WithFallbackFile overrides the local KEY=VALUE fallback file.
func WithFallbackFile(path string) Option {
	return func(cfg *resolverConfig) { cfg.fallbackPath = strings.TrimSpace(path) }
}

// Offline disables Secret Manager entirely; only the fallback file is consulted.
func Offline() Option {
	return func(cfg *resolverConfig) { cfg.offline = true }
}

// NewResolver builds a Resolver. A Secret Manager client that cannot be created
// is logged and the resolver continues in fallback-only mode.
func NewResolver(ctx context.Context, opts ...Option) *Resolver {
	cfg := resolverConfig{fallbackPath: defaultFallbackPath}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	r := &Resolver{
		client:       cfg.client,
		projectID:    cfg.projectID,
		logger:       cfg.logger,
		fallbackPath: cfg.fallbackPath,
		cache:        map[string]string{},
	}
	if r.client == nil && !cfg.offline {
		client, err := secretManagerClientFactory(ctx, cfg.clientOpts...)
		if err != nil {
			cfg.logger.Warn("secrets: secret manager unavailable; using fallback file", zap.Error(err))
		} else {
			r.client = client
			r.ownsClient = true
		}
	}
	return r
}

// Close releases the Secret Manager client when owned by the resolver.
func (r *Resolver) Close() error {
	if r.ownsClient && r.client != nil {
		return r.client.Close()
	}
	return nil
}

type reference struct {
	project string
	name    string
	version string
}

// canonical is the cache and fallback key: the secret name without project/version.
func (ref reference) canonical() string { return ref.name }

func parseReference(raw string) (reference, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, referencePrefix) {
		return reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(trimmed, referencePrefix), "/"), "/")
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
		}
	}
	switch len(parts) {
	case 1:
		return reference{name: parts[0], version: defaultVersion}, nil
	case 2:
		return reference{project: parts[0], name: parts[1], version: defaultVersion}, nil
	case 3:
		return reference{project: parts[0], name: parts[1], version: parts[2]}, nil
	default:
		return reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}
}

// Resolve returns the secret value for ref. The signature matches
// config.SecretResolverFunc.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	ref, err := parseReference(raw)
	if err != nil {
		return "", err
	}
	key := ref.project + "/" + ref.name + "/" + ref.version

	r.mu.RLock()
	value, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return value, nil
	}

	project := ref.project
	if project == "" {
		project = r.projectID
	}
	if r.client != nil && project != "" {
		name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, ref.name, ref.version)
		resp, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err == nil && resp.GetPayload() != nil {
			value = string(resp.GetPayload().GetData())
			r.store(key, value)
			return value, nil
		}
		r.logger.Debug("secrets: remote lookup failed; trying fallback", zap.String("secret", ref.name), zap.Error(err))
	}

	if value, ok := r.lookupFallback(ref.canonical()); ok {
		r.store(key, value)
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, ref.name)
}

func (r *Resolver) store(key, value string) {
	r.mu.Lock()
	r.cache[key] = value
	r.mu.Unlock()
}

func (r *Resolver) lookupFallback(name string) (string, bool) {
	r.fallbackOnce.Do(func() {
		r.fallback = map[string]string{}
		if r.fallbackPath == "" {
			return
		}
		values, err := godotenv.Read(r.fallbackPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				r.logger.Warn("secrets: unable to read fallback file", zap.String("path", r.fallbackPath), zap.Error(err))
			}
			return
		}
		r.fallback = values
	})
	value, ok := r.fallback[name]
	return value, ok
}
