package nonce

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	m, err := New("test-key", time.Hour, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	token, err := m.Issue("contact_form_submit")
	require.NoError(t, err)
	require.NoError(t, m.Verify(token, "contact_form_submit"))
	require.True(t, errors.Is(m.Verify(token, "cookie_consent"), ErrInvalid))
	require.True(t, errors.Is(m.Verify("", "contact_form_submit"), ErrInvalid))
	require.True(t, errors.Is(m.Verify("garbage", "contact_form_submit"), ErrInvalid))

	now = now.Add(2 * time.Hour)
	require.True(t, errors.Is(m.Verify(token, "contact_form_submit"), ErrExpired))
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	a, err := New("key-a", time.Hour)
	require.NoError(t, err)
	b, err := New("key-b", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue("cookie_consent")
	require.NoError(t, err)
	require.True(t, errors.Is(b.Verify(token, "cookie_consent"), ErrInvalid))
}

func TestRandomKeyWhenUnset(t *testing.T) {
	m, err := New("", 0)
	require.NoError(t, err)
	require.Len(t, m.key, 32)
	require.Equal(t, 24*time.Hour, m.ttl)
	token, err := m.Issue("x")
	require.NoError(t, err)
	require.NoError(t, m.Verify(token, "x"))
}
