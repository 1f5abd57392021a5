package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

type objectIterator interface {
	Next() (*gcs.ObjectAttrs, error)
}

// BucketLibrary lists images stored in a Cloud Storage bucket.
type BucketLibrary struct {
	client  *gcs.Client
	bucket  string
	baseURL string
	objects func(ctx context.Context) objectIterator
}

// NewBucketLibrary creates a storage client for bucket. Public URLs are built
// from baseURL, defaulting to https://storage.googleapis.com/<bucket>.
func NewBucketLibrary(ctx context.Context, bucket, baseURL string) (*BucketLibrary, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("media: bucket is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("media: storage client: %w", err)
	}
	lib := newBucketLibrary(bucket, baseURL, func(ctx context.Context) objectIterator {
		return client.Bucket(bucket).Objects(ctx, nil)
	})
	lib.client = client
	return lib, nil
}

func newBucketLibrary(bucket, baseURL string, objects func(ctx context.Context) objectIterator) *BucketLibrary {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucket
	}
	return &BucketLibrary{bucket: bucket, baseURL: baseURL, objects: objects}
}

func (l *BucketLibrary) Images(ctx context.Context) ([]Attachment, error) {
	it := l.objects(ctx)
	var out []Attachment
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("media: list %s: %w", l.bucket, err)
		}
		if !IsImage(attrs.ContentType) || strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		title := attrs.Metadata["title"]
		if title == "" {
			title = TitleFromName(attrs.Name)
		}
		out = append(out, Attachment{
			URL:       l.baseURL + "/" + attrs.Name,
			Title:     title,
			MimeType:  attrs.ContentType,
			UpdatedAt: attrs.Updated.UTC(),
		})
	}
	sortAttachments(out)
	return out, nil
}

// Close releases the storage client.
func (l *BucketLibrary) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}
