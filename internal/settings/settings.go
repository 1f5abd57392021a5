// Package settings is the key-value store behind the customizer: contact data,
// colours, services, hero and CTA texts and per-page meta records.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vuducle/le-custom-sub000/internal/config"
	"github.com/vuducle/le-custom-sub000/internal/firestore"
)

// Store reads and writes customizer values. Writes are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	All(ctx context.Context) (Values, error)
	Set(ctx context.Context, values map[string]string) error
}

// Values is a snapshot of settings with typed accessors that fall back to defaults.
type Values map[string]string

// String returns the trimmed value for key, or fallback when unset or blank.
func (v Values) String(key, fallback string) string {
	if s := strings.TrimSpace(v[key]); s != "" {
		return s
	}
	return fallback
}

// Int returns the integer value for key, or fallback when unset or invalid.
func (v Values) Int(key string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(v[key])); err == nil {
		return n
	}
	return fallback
}

// Bool interprets "1", "true", "yes" and "on" as true.
func (v Values) Bool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v[key])) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

// Keys returns the keys in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot reads all values, logging and returning an empty set on failure so
// renders fall back to defaults.
func Snapshot(ctx context.Context, store Store, logger *zap.Logger) Values {
	values, err := store.All(ctx)
	if err != nil {
		if logger != nil {
			logger.Warn("settings: read failed; using defaults", zap.Error(err))
		}
		return Values{}
	}
	return values
}

// Open builds the configured backend and applies the seed file to empty stores.
func Open(ctx context.Context, cfg config.SettingsConfig, provider *firestore.Provider) (Store, error) {
	var store Store
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		store = NewMemoryStore(nil)
	case "file":
		fs, err := NewFileStore(cfg.File)
		if err != nil {
			return nil, err
		}
		store = fs
	case "firestore":
		if provider == nil {
			return nil, errors.New("settings: firestore backend requires a provider")
		}
		store = NewFirestoreStore(provider)
	default:
		return nil, fmt.Errorf("settings: unknown backend %q", cfg.Backend)
	}
	if strings.TrimSpace(cfg.SeedFile) != "" {
		if err := Seed(ctx, store, cfg.SeedFile); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Seed writes the YAML seed file into store when the store is empty.
func Seed(ctx context.Context, store Store, path string) error {
	current, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("settings: read before seed: %w", err)
	}
	if len(current) > 0 {
		return nil
	}
	values, err := readYAML(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(values) == 0 {
		return nil
	}
	return store.Set(ctx, values)
}

func readYAML(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	values := make(map[string]string, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = t
		default:
			values[k] = fmt.Sprint(t)
		}
	}
	return values, nil
}
