package recaptcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vuducle/le-custom-sub000/internal/config"
)

func TestUnconfiguredAlwaysSucceeds(t *testing.T) {
	c := New(config.RecaptchaConfig{}, nil)
	require.False(t, c.Enabled())
	first := c.Verify(context.Background(), "", "contact_form", "")
	second := c.Verify(context.Background(), "", "contact_form", "")
	require.Equal(t, Result{Success: true, Score: 1, Reason: ReasonNotConfigured}, first)
	require.Equal(t, first, second)

	onlySite := New(config.RecaptchaConfig{SiteKey: "site"}, nil)
	require.True(t, onlySite.Verify(context.Background(), "tok", "contact_form", "").Success)
}

func newVerifyServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "secret", r.PostForm.Get("secret"))
		require.Equal(t, "token", r.PostForm.Get("response"))
		require.Equal(t, "203.0.113.7", r.PostForm.Get("remoteip"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifyOutcomes(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		want   Result
	}{
		{"ok", `{"success":true,"score":0.9,"action":"contact_form"}`, 200, Result{Success: true, Score: 0.9, Reason: ReasonOK}},
		{"threshold inclusive", `{"success":true,"score":0.5,"action":"contact_form"}`, 200, Result{Success: true, Score: 0.5, Reason: ReasonOK}},
		{"low score", `{"success":true,"score":0.2,"action":"contact_form"}`, 200, Result{Score: 0.2, Reason: ReasonLowScore}},
		{"action mismatch", `{"success":true,"score":0.9,"action":"login"}`, 200, Result{Score: 0.9, Reason: ReasonActionMismatch}},
		{"rejected", `{"success":false,"error-codes":["invalid-input-response"]}`, 200, Result{Reason: ReasonVerificationFailed}},
		{"server error", `oops`, 500, Result{Reason: ReasonRequestFailed}},
		{"bad json", `{`, 200, Result{Reason: ReasonRequestFailed}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newVerifyServer(t, tc.body, tc.status)
			c := New(config.RecaptchaConfig{SiteKey: "site", SecretKey: "secret", VerifyURL: srv.URL, Threshold: DefaultThreshold}, nil)
			got := c.Verify(context.Background(), "token", "contact_form", "203.0.113.7")
			require.Equal(t, tc.want, got)
		})
	}
}

func TestThresholdBounds(t *testing.T) {
	body := `{"success":true,"score":0.1,"action":"contact_form"}`
	cases := []struct {
		name      string
		threshold float64
		want      Result
	}{
		{"zero accepts any score", 0, Result{Success: true, Score: 0.1, Reason: ReasonOK}},
		{"negative falls back to default", -0.3, Result{Score: 0.1, Reason: ReasonLowScore}},
		{"above one falls back to default", 1.2, Result{Score: 0.1, Reason: ReasonLowScore}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newVerifyServer(t, body, http.StatusOK)
			c := New(config.RecaptchaConfig{SiteKey: "site", SecretKey: "secret", VerifyURL: srv.URL, Threshold: tc.threshold}, nil)
			require.Equal(t, tc.want, c.Verify(context.Background(), "token", "contact_form", "203.0.113.7"))
		})
	}
}

func TestMissingTokenWhenConfigured(t *testing.T) {
	c := New(config.RecaptchaConfig{SiteKey: "site", SecretKey: "secret", VerifyURL: "http://127.0.0.1:0"}, nil)
	require.Equal(t, Result{Reason: ReasonMissingToken}, c.Verify(context.Background(), " ", "contact_form", ""))
}

func TestTransportErrorFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := New(config.RecaptchaConfig{SiteKey: "site", SecretKey: "secret", VerifyURL: url}, nil)
	got := c.Verify(context.Background(), "token", "contact_form", "")
	require.False(t, got.Success)
	require.Equal(t, ReasonRequestFailed, got.Reason)
}
