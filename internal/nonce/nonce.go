// Package nonce issues and verifies action nonces: short-lived HS256 tokens
// bound to one action name, used as anti-CSRF tokens on AJAX actions.
package nonce

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalid = errors.New("nonce: invalid")
	ErrExpired = errors.New("nonce: expired")
)

const issuer = "praxis-web"

type claims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// Manager signs and verifies nonces.
type Manager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// Option customises the Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New returns a Manager. An empty key is replaced by a random per-process key,
// which invalidates outstanding nonces on restart.
func New(key string, ttl time.Duration, opts ...Option) (*Manager, error) {
	m := &Manager{key: []byte(key), ttl: ttl, now: time.Now}
	if len(m.key) == 0 {
		m.key = make([]byte, 32)
		if _, err := rand.Read(m.key); err != nil {
			return nil, fmt.Errorf("nonce: generate key: %w", err)
		}
	}
	if m.ttl <= 0 {
		m.ttl = 24 * time.Hour
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue returns a nonce for action.
func (m *Manager) Issue(action string) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("nonce: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and action binding of value.
func (m *Manager) Verify(value, action string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrInvalid
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	var c claims
	if _, err := parser.ParseWithClaims(value, &c, func(*jwt.Token) (any, error) { return m.key, nil }); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Issuer != issuer || c.Action != action {
		return ErrInvalid
	}
	if c.ExpiresAt == nil || !m.now().Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
