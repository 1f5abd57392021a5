package main

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	assetMaxAge  = 7 * 24 * time.Hour
	uploadMaxAge = 24 * time.Hour
)

// staticFiles serves a directory with Cache-Control and content-hash ETags.
// Mount it behind http.StripPrefix. ETags are recomputed when a file's size or
// mtime changes, so uploads replaced at runtime are picked up.
type staticFiles struct {
	dir    string
	maxAge time.Duration
	files  http.Handler

	mu    sync.Mutex
	etags map[string]etagEntry
}

type etagEntry struct {
	size  int64
	mtime time.Time
	tag   string
}

func newStaticFiles(dir string, maxAge time.Duration) *staticFiles {
	return &staticFiles{
		dir:    dir,
		maxAge: maxAge,
		files:  http.FileServer(http.Dir(dir)),
		etags:  map[string]etagEntry{},
	}
}

func (s *staticFiles) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Vary", "Accept-Encoding")
	h.Set("Cache-Control", "public, max-age="+formatSeconds(s.maxAge))
	if tag := s.etag(r.URL.Path); tag != "" {
		h.Set("ETag", tag)
		if etagMatches(r.Header.Get("If-None-Match"), tag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	s.files.ServeHTTP(w, r)
}

func (s *staticFiles) etag(urlPath string) string {
	clean := path.Clean("/" + urlPath)
	file := filepath.Join(s.dir, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.etags[clean]; ok && e.size == info.Size() && e.mtime.Equal(info.ModTime()) {
		return e.tag
	}
	tag, err := fileETag(file)
	if err != nil {
		return ""
	}
	s.etags[clean] = etagEntry{size: info.Size(), mtime: info.ModTime(), tag: tag}
	return tag
}

func etagMatches(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}

func fileETag(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`, nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10)
}
