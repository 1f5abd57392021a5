package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vuducle/le-custom-sub000/internal/content"
	"github.com/vuducle/le-custom-sub000/internal/settings"
)

const metaKeyPrefix = "page_meta_"

// Meta is the per-page record edited in the page meta box.
type Meta struct {
	Hero            content.HeroData     `json:"hero"`
	About           []content.AboutBlock `json:"about"`
	MetaDescription string               `json:"meta_description"`
	SEOTitle        string               `json:"seo_title"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// MetaStore keeps page meta as JSON values in the settings store.
type MetaStore struct {
	store settings.Store
	now   func() time.Time
}

func NewMetaStore(store settings.Store) *MetaStore {
	return &MetaStore{store: store, now: time.Now}
}

// MetaKey returns the settings key holding the meta record for slug.
func MetaKey(slug string) string { return metaKeyPrefix + slug }

// Get returns the stored meta. A missing or unreadable record yields the zero
// Meta and false.
func (m *MetaStore) Get(ctx context.Context, slug string) (Meta, bool, error) {
	raw, ok, err := m.store.Get(ctx, MetaKey(slug))
	if err != nil {
		return Meta{}, false, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return Meta{}, false, nil
	}
	var meta Meta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return Meta{}, false, nil
	}
	return meta, true, nil
}

// FromValues reads meta from a settings snapshot.
func FromValues(values settings.Values, slug string) (Meta, bool) {
	raw := strings.TrimSpace(values[MetaKey(slug)])
	if raw == "" {
		return Meta{}, false
	}
	var meta Meta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return Meta{}, false
	}
	return meta, true
}

// Save creates or overwrites the record for slug. Layouts are normalised and
// text fields stripped of markup before storage.
func (m *MetaStore) Save(ctx context.Context, slug string, meta Meta) (Meta, error) {
	meta.Hero.Layout = content.ParseLayout(string(meta.Hero.Layout))
	for i := range meta.About {
		meta.About[i].Layout = content.ParseLayout(string(meta.About[i].Layout))
		meta.About[i].Title = strings.TrimSpace(meta.About[i].Title)
	}
	meta.MetaDescription = PlainText(meta.MetaDescription)
	meta.SEOTitle = PlainText(meta.SEOTitle)
	meta.UpdatedAt = m.now().UTC()
	raw, err := json.Marshal(meta)
	if err != nil {
		return Meta{}, fmt.Errorf("pages: encode meta %s: %w", slug, err)
	}
	if err := m.store.Set(ctx, map[string]string{MetaKey(slug): string(raw)}); err != nil {
		return Meta{}, fmt.Errorf("pages: save meta %s: %w", slug, err)
	}
	return meta, nil
}
