package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
)

// Document is a decoded document with its update time.
type Document[T any] struct {
	ID         string
	Data       T
	UpdateTime time.Time
}

// Repository provides typed helpers over one collection.
type Repository[T any] struct {
	provider   *Provider
	collection string
}

// NewRepository binds a Repository to the provider's prefixed collection.
func NewRepository[T any](provider *Provider, collection string) *Repository[T] {
	return &Repository[T]{provider: provider, collection: provider.Collection(strings.TrimSpace(collection))}
}

// Set upserts value under id. MergeAll options require map values.
func (r *Repository[T]) Set(ctx context.Context, id string, value any, opts ...firestore.SetOption) error {
	doc, err := r.documentRef(ctx, id)
	if err != nil {
		return err
	}
	if _, err := doc.Set(ctx, value, opts...); err != nil {
		return WrapError(r.op("set"), err)
	}
	return nil
}

// Get fetches and decodes the document by ID.
func (r *Repository[T]) Get(ctx context.Context, id string) (Document[T], error) {
	doc, err := r.documentRef(ctx, id)
	if err != nil {
		return Document[T]{}, err
	}
	snap, err := doc.Get(ctx)
	if err != nil {
		return Document[T]{}, WrapError(r.op("get"), err)
	}
	return decode[T](snap)
}

func decode[T any](snap *firestore.DocumentSnapshot) (Document[T], error) {
	var data T
	if err := snap.DataTo(&data); err != nil {
		return Document[T]{}, fmt.Errorf("firestore: decode document %s: %w", snap.Ref.ID, err)
	}
	return Document[T]{ID: snap.Ref.ID, Data: data, UpdateTime: snap.UpdateTime}, nil
}

func (r *Repository[T]) documentRef(ctx context.Context, id string) (*firestore.DocumentRef, error) {
	if strings.TrimSpace(id) == "" {
		return nil, WrapError(r.op("document"), errors.New("firestore: document id is required"))
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(r.collection).Doc(id), nil
}

func (r *Repository[T]) op(action string) string {
	return fmt.Sprintf("%s.%s", r.collection, action)
}
