package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore persists settings as a flat YAML mapping. The file is read once
// and rewritten atomically on every Set.
type FileStore struct {
	path string
	mem  *MemoryStore
}

// NewFileStore loads path; a missing file starts an empty store.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("settings: file path is required")
	}
	values, err := readYAML(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return &FileStore{path: path, mem: NewMemoryStore(values)}, nil
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.mem.Get(ctx, key)
}

func (s *FileStore) All(ctx context.Context) (Values, error) {
	return s.mem.All(ctx)
}

func (s *FileStore) Set(ctx context.Context, values map[string]string) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	next := make(map[string]string, len(s.mem.values)+len(values))
	for k, v := range s.mem.values {
		next[k] = v
	}
	for k, v := range values {
		next[k] = v
	}
	if err := writeYAML(s.path, next); err != nil {
		return err
	}
	s.mem.values = next
	return nil
}

func writeYAML(path string, values map[string]string) error {
	raw, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("settings: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("settings: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("settings: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("settings: replace %s: %w", path, err)
	}
	return nil
}
