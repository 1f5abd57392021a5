package contact

import (
	"errors"
)

// Error codes returned to the client.
const (
	CodeInvalidNonce    = "invalid_nonce"
	CodeRecaptcha       = "recaptcha_failed"
	CodeMissingField    = "missing_field"
	CodeInvalidEmail    = "invalid_email"
	CodePrivacyRequired = "privacy_required"
	CodeRateLimited     = "rate_limited"
	CodeSendFailed      = "send_failed"
)

var ErrRateLimited = errors.New("contact: rate limited")

// ValidationError rejects a submission before any mail is sent.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "contact: " + e.Code + " (" + e.Field + ")"
	}
	return "contact: " + e.Code
}

// Is matches ErrRateLimited for rate-limit rejections.
func (e *ValidationError) Is(target error) bool {
	return target == ErrRateLimited && e.Code == CodeRateLimited
}

// DeliveryError reports that the notification mail could not be sent.
type DeliveryError struct {
	Message string
	Err     error
}

func (e *DeliveryError) Error() string { return "contact: delivery failed: " + e.Err.Error() }

func (e *DeliveryError) Unwrap() error { return e.Err }
