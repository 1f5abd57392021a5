// Package recaptcha verifies reCAPTCHA v3 tokens against the siteverify endpoint.
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/config"
)

const (
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	DefaultThreshold = 0.5

	tracerName = "github.com/vuducle/le-custom-sub000/internal/recaptcha"
)

// Verification outcomes reported in Result.Reason.
const (
	ReasonNotConfigured      = "not_configured"
	ReasonMissingToken       = "missing_token"
	ReasonVerificationFailed = "verification_failed"
	ReasonActionMismatch     = "action_mismatch"
	ReasonLowScore           = "low_score"
	ReasonRequestFailed      = "request_failed"
	ReasonOK                 = "ok"
)

// Result is the outcome of one verification.
type Result struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// Verifier checks a client token for an action.
type Verifier interface {
	Enabled() bool
	SiteKey() string
	Verify(ctx context.Context, token, action, remoteIP string) Result
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Client talks to the siteverify endpoint.
type Client struct {
	siteKey   string
	secretKey string
	threshold float64
	verifyURL string
	http      *http.Client
	logger    *zap.Logger
}

// New builds a Client from configuration.
func New(cfg config.RecaptchaConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Zero is a valid threshold that accepts every score.
	threshold := cfg.Threshold
	if threshold < 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	verifyURL := strings.TrimSpace(cfg.VerifyURL)
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		siteKey:   strings.TrimSpace(cfg.SiteKey),
		secretKey: strings.TrimSpace(cfg.SecretKey),
		threshold: threshold,
		verifyURL: verifyURL,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// Enabled reports whether both keys are configured.
func (c *Client) Enabled() bool { return c.siteKey != "" && c.secretKey != "" }

// SiteKey is the public key rendered into the page.
func (c *Client) SiteKey() string { return c.siteKey }

// Verify checks token for action. Without keys every call succeeds with score 1.
// Transport and decoding failures fail closed.
func (c *Client) Verify(ctx context.Context, token, action, remoteIP string) Result {
	if !c.Enabled() {
		return Result{Success: true, Score: 1, Reason: ReasonNotConfigured}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Result{Reason: ReasonMissingToken}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "recaptcha.verify")
	defer span.End()
	span.SetAttributes(attribute.String("recaptcha.action", action))

	resp, err := c.siteVerify(ctx, token, remoteIP)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "siteverify request failed")
		c.logger.Warn("recaptcha: verification request failed", zap.Error(err))
		return Result{Reason: ReasonRequestFailed}
	}
	result := c.evaluate(resp, action)
	span.SetAttributes(attribute.Float64("recaptcha.score", result.Score), attribute.String("recaptcha.reason", result.Reason))
	if !result.Success {
		c.logger.Info("recaptcha: verification rejected",
			zap.String("reason", result.Reason),
			zap.Float64("score", result.Score),
			zap.Strings("error_codes", resp.ErrorCodes),
		)
	}
	return result
}

func (c *Client) evaluate(resp siteVerifyResponse, action string) Result {
	switch {
	case !resp.Success:
		return Result{Score: resp.Score, Reason: ReasonVerificationFailed}
	case action != "" && resp.Action != action:
		return Result{Score: resp.Score, Reason: ReasonActionMismatch}
	case resp.Score < c.threshold:
		return Result{Score: resp.Score, Reason: ReasonLowScore}
	}
	return Result{Success: true, Score: resp.Score, Reason: ReasonOK}
}

func (c *Client) siteVerify(ctx context.Context, token, remoteIP string) (siteVerifyResponse, error) {
	form := url.Values{}
	form.Set("secret", c.secretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return siteVerifyResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return siteVerifyResponse{}, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return siteVerifyResponse{}, fmt.Errorf("recaptcha: siteverify status %d", res.StatusCode)
	}
	var out siteVerifyResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&out); err != nil {
		return siteVerifyResponse{}, fmt.Errorf("recaptcha: decode response: %w", err)
	}
	return out, nil
}
