// Package consent stores the visitor's cookie consent in a single cookie.
//
// There are two states: pending (no valid cookie) and given. Consent cannot be
// withdrawn from the site; it ends when the cookie expires or is deleted.
package consent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

const (
	CookieName = "cookie_consent"
	// Version is bumped when the consent text changes; older records count as pending.
	Version = "1.0"
	MaxAge  = 365 * 24 * time.Hour
)

// State of the consent overlay.
type State string

const (
	StatePending State = "pending"
	StateGiven   State = "given"
)

// Given reports whether optional content (maps, analytics) may load.
func (s State) Given() bool { return s == StateGiven }

// Record is the JSON payload of the consent cookie.
type Record struct {
	ConsentGiven bool   `json:"consent_given"`
	Timestamp    int64  `json:"timestamp"`
	Necessary    bool   `json:"necessary"`
	Version      string `json:"version"`
}

// Read parses the consent cookie. Missing, malformed or outdated records are pending.
func Read(r *http.Request) (Record, State) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Record{}, StatePending
	}
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return Record{}, StatePending
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, StatePending
	}
	if !rec.ConsentGiven || rec.Version != Version {
		return rec, StatePending
	}
	return rec, StateGiven
}

// Accept writes a fresh consent record valid for one year.
func Accept(w http.ResponseWriter, now time.Time, secure bool) Record {
	rec := Record{
		ConsentGiven: true,
		Timestamp:    now.Unix(),
		Necessary:    true,
		Version:      Version,
	}
	b, _ := json.Marshal(rec)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    url.QueryEscape(string(b)),
		Path:     "/",
		Expires:  now.Add(MaxAge),
		MaxAge:   int(MaxAge / time.Second),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return rec
}

type ctxKey struct{}

// Middleware resolves the consent state once per request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, state := Read(r)
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), state)))
	})
}

func WithState(ctx context.Context, state State) context.Context {
	return context.WithValue(ctx, ctxKey{}, state)
}

// FromContext returns the stored state, pending when absent.
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(ctxKey{}).(State); ok {
		return s
	}
	return StatePending
}
