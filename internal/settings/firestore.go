package settings

import (
	"context"

	gfirestore "cloud.google.com/go/firestore"

	"github.com/vuducle/le-custom-sub000/internal/firestore"
)

const (
	settingsCollection = "settings"
	customizerDocument = "customizer"
)

// FirestoreStore keeps all settings as fields of one document.
type FirestoreStore struct {
	repo *firestore.Repository[map[string]string]
}

func NewFirestoreStore(provider *firestore.Provider) *FirestoreStore {
	return &FirestoreStore{repo: firestore.NewRepository[map[string]string](provider, settingsCollection)}
}

func (s *FirestoreStore) Get(ctx context.Context, key string) (string, bool, error) {
	values, err := s.All(ctx)
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FirestoreStore) All(ctx context.Context) (Values, error) {
	doc, err := s.repo.Get(ctx, customizerDocument)
	if err != nil {
		if firestore.IsNotFound(err) {
			return Values{}, nil
		}
		return nil, err
	}
	return Values(doc.Data), nil
}

func (s *FirestoreStore) Set(ctx context.Context, values map[string]string) error {
	payload := make(map[string]any, len(values))
	for k, v := range values {
		payload[k] = v
	}
	return s.repo.Set(ctx, customizerDocument, payload, gfirestore.MergeAll)
}
