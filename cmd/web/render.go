package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/i18n"
	"github.com/vuducle/le-custom-sub000/internal/requestctx"
)

// renderer parses every .tmpl file below dir into one set whose entry point
// is "base". In dev mode templates are reparsed on each request.
type renderer struct {
	dir     string
	devMode bool
	bundle  *i18n.Bundle

	cache *template.Template
}

func newRenderer(dir string, devMode bool, bundle *i18n.Bundle) (*renderer, error) {
	r := &renderer{dir: dir, devMode: devMode, bundle: bundle}
	// parse once up front so syntax errors fail at startup, even in dev mode
	tc, err := r.parse()
	if err != nil {
		return nil, err
	}
	if !devMode {
		r.cache = tc
	}
	return r, nil
}

func (r *renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"now":       time.Now,
		"hasPrefix": strings.HasPrefix,
		"safeURL":   func(s string) template.URL { return template.URL(s) },
		"t": func(lang, key string, args ...any) string {
			return r.bundle.T(lang, key, args...)
		},
		"nl2br": func(s string) template.HTML {
			lines := strings.Split(template.HTMLEscapeString(s), "\n")
			return template.HTML(strings.Join(lines, "<br>"))
		},
	}
}

func (r *renderer) parse() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", r.dir)
	}
	return template.New("_root").Funcs(r.funcs()).ParseFiles(files...)
}

func (r *renderer) templates() (*template.Template, error) {
	if r.devMode {
		return r.parse()
	}
	if r.cache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	return r.cache, nil
}

// render executes the base layout with status. Output is buffered so template
// errors never leave a half-written page.
func (r *renderer) render(w http.ResponseWriter, req *http.Request, status int, data any) {
	logger := requestctx.Logger(req.Context())
	t, err := r.templates()
	if err != nil {
		logger.Error("template parse error", zap.Error(err))
		http.Error(w, "template parse error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		logger.Error("template exec error", zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
