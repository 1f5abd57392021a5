package contact

import (
	"context"
	"sync"
	"time"

	"github.com/vuducle/le-custom-sub000/internal/firestore"
)

// Submission is the stored record of one accepted contact request.
type Submission struct {
	ID               string    `firestore:"id" json:"id"`
	ReceivedAt       time.Time `firestore:"receivedAt" json:"received_at"`
	Lang             string    `firestore:"lang" json:"lang"`
	FirstName        string    `firestore:"firstName" json:"first_name"`
	LastName         string    `firestore:"lastName" json:"last_name"`
	Email            string    `firestore:"email" json:"email"`
	Phone            string    `firestore:"phone" json:"phone"`
	Subject          string    `firestore:"subject" json:"subject"`
	Message          string    `firestore:"message" json:"message"`
	RecaptchaScore   float64   `firestore:"recaptchaScore" json:"recaptcha_score"`
	NotificationSent bool      `firestore:"notificationSent" json:"notification_sent"`
	ConfirmationSent bool      `firestore:"confirmationSent" json:"confirmation_sent"`
}

// SubmissionStore persists accepted submissions.
type SubmissionStore interface {
	Save(ctx context.Context, s Submission) error
}

// MemoryStore keeps submissions in memory.
type MemoryStore struct {
	mu    sync.Mutex
	items []Submission
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Save(_ context.Context, sub Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, sub)
	return nil
}

// List returns stored submissions in insertion order.
func (s *MemoryStore) List() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Submission, len(s.items))
	copy(out, s.items)
	return out
}

// FirestoreStore writes one document per submission, keyed by its ULID.
type FirestoreStore struct {
	repo *firestore.Repository[Submission]
}

func NewFirestoreStore(provider *firestore.Provider) *FirestoreStore {
	return &FirestoreStore{repo: firestore.NewRepository[Submission](provider, "submissions")}
}

func (s *FirestoreStore) Save(ctx context.Context, sub Submission) error {
	return s.repo.Set(ctx, sub.ID, sub)
}
