// Package media lists the image attachments of the site, either from a local
// uploads directory or from a Cloud Storage bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vuducle/le-custom-sub000/internal/config"
)

// Attachment is one uploaded image.
type Attachment struct {
	URL       string
	Title     string
	MimeType  string
	UpdatedAt time.Time
}

// Library lists image attachments sorted by URL.
type Library interface {
	Images(ctx context.Context) ([]Attachment, error)
}

// Open selects the bucket library when a bucket is configured and the local
// directory otherwise.
func Open(ctx context.Context, cfg config.MediaConfig) (Library, error) {
	if strings.TrimSpace(cfg.Bucket) != "" {
		return NewBucketLibrary(ctx, cfg.Bucket, cfg.BucketURL)
	}
	return NewDirLibrary(cfg.Dir, cfg.URLPrefix), nil
}

// DirLibrary reads images below a local directory.
type DirLibrary struct {
	dir       string
	urlPrefix string
}

func NewDirLibrary(dir, urlPrefix string) *DirLibrary {
	return &DirLibrary{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (l *DirLibrary) Images(_ context.Context) ([]Attachment, error) {
	var out []Attachment
	err := filepath.WalkDir(l.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if !IsImage(mimeType) {
			return nil
		}
		rel, err := filepath.Rel(l.dir, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		out = append(out, Attachment{
			URL:       l.urlPrefix + "/" + rel,
			Title:     TitleFromName(rel),
			MimeType:  mimeType,
			UpdatedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("media: walk %s: %w", l.dir, err)
	}
	sortAttachments(out)
	return out, nil
}

// IsImage reports whether a MIME type denotes an image.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.TrimSpace(mimeType), "image/")
}

// TitleFromName derives a title from a file name: "team/dr-mueller_2.jpg" -> "dr mueller 2".
func TitleFromName(name string) string {
	base := path.Base(name)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.Join(strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' }), " ")
}

func sortAttachments(items []Attachment) {
	sort.Slice(items, func(i, j int) bool { return items[i].URL < items[j].URL })
}

// StaticLibrary serves a fixed attachment list.
type StaticLibrary []Attachment

func (s StaticLibrary) Images(context.Context) ([]Attachment, error) {
	out := make([]Attachment, len(s))
	copy(out, s)
	sortAttachments(out)
	return out, nil
}
