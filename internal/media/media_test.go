package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"
)

func TestDirLibraryListsImagesOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "team"), 0o755))
	for _, name := range []string{"praxis.jpg", "team/dr-mueller_2.png", "preisliste.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	items, err := NewDirLibrary(dir, "/uploads/").Images(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "/uploads/praxis.jpg", items[0].URL)
	require.Equal(t, "image/jpeg", items[0].MimeType)
	require.Equal(t, "/uploads/team/dr-mueller_2.png", items[1].URL)
	require.Equal(t, "dr mueller 2", items[1].Title)
}

func TestDirLibraryMissingDir(t *testing.T) {
	items, err := NewDirLibrary(filepath.Join(t.TempDir(), "missing"), "/uploads").Images(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

type fakeObjects struct {
	items []*gcs.ObjectAttrs
}

func (f *fakeObjects) Next() (*gcs.ObjectAttrs, error) {
	if len(f.items) == 0 {
		return nil, iterator.Done
	}
	next := f.items[0]
	f.items = f.items[1:]
	return next, nil
}

func TestBucketLibraryFiltersAndSorts(t *testing.T) {
	updated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	lib := newBucketLibrary("praxis-media", "", func(context.Context) objectIterator {
		return &fakeObjects{items: []*gcs.ObjectAttrs{
			{Name: "wartezimmer.webp", ContentType: "image/webp", Updated: updated},
			{Name: "folder/", ContentType: "image/png"},
			{Name: "anamnese.pdf", ContentType: "application/pdf"},
			{Name: "behandlung.jpg", ContentType: "image/jpeg", Metadata: map[string]string{"title": "Behandlungsraum"}},
		}}
	})
	items, err := lib.Images(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "https://storage.googleapis.com/praxis-media/behandlung.jpg", items[0].URL)
	require.Equal(t, "Behandlungsraum", items[0].Title)
	require.Equal(t, "wartezimmer", items[1].Title)
	require.Equal(t, updated, items[1].UpdatedAt)
	require.NoError(t, lib.Close())
}
