// Package contact handles contact form submissions: verification, field
// validation, notification and confirmation mails, rate limiting and
// best-effort persistence.
package contact

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/content"
	"github.com/vuducle/le-custom-sub000/internal/i18n"
	"github.com/vuducle/le-custom-sub000/internal/mail"
	"github.com/vuducle/le-custom-sub000/internal/recaptcha"
	"github.com/vuducle/le-custom-sub000/internal/requestctx"
)

// Action names bound to the nonce and the reCAPTCHA token.
const (
	NonceAction     = "contact_form_submit"
	RecaptchaAction = "contact_form"

	instrumentationName = "github.com/vuducle/le-custom-sub000/internal/contact"
)

// NonceVerifier checks anti-CSRF nonces.
type NonceVerifier interface {
	Verify(value, action string) error
}

// Request is one contact form post.
type Request struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Subject        string
	Message        string
	Privacy        bool
	Nonce          string
	RecaptchaToken string
	Lang           string
	RemoteIP       string
}

// Result describes an accepted submission.
type Result struct {
	ID               string  `json:"id"`
	Message          string  `json:"message"`
	ConfirmationSent bool    `json:"confirmation_sent"`
	Score            float64 `json:"-"`
}

type fields struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required"`
	Subject   string `validate:"required"`
	Message   string `validate:"required"`
}

// requiredOrder is the order in which missing fields are reported.
var requiredOrder = []struct{ structField, formField string }{
	{"FirstName", "first_name"},
	{"LastName", "last_name"},
	{"Email", "email"},
	{"Subject", "subject"},
	{"Message", "message"},
}

// Service processes submissions.
type Service struct {
	nonces    NonceVerifier
	recaptcha recaptcha.Verifier
	transport mail.Transport
	limiter   RateLimiter
	store     SubmissionStore
	contact   func(ctx context.Context) content.ContactData
	recipient string
	logger    *zap.Logger
	now       func() time.Time

	validate  *validator.Validate
	policy    *bluemonday.Policy
	submitted metric.Int64Counter
}

// Option customises the Service.
type Option func(*Service)

// WithRateLimiter enables per-IP throttling.
func WithRateLimiter(l RateLimiter) Option { return func(s *Service) { s.limiter = l } }

// WithStore persists accepted submissions.
func WithStore(store SubmissionStore) Option { return func(s *Service) { s.store = store } }

// WithRecipient overrides the notification recipient taken from the contact data.
func WithRecipient(addr string) Option {
	return func(s *Service) { s.recipient = strings.TrimSpace(addr) }
}

// WithLogger sets the logger used when no request logger is available.
func WithLogger(logger *zap.Logger) Option { return func(s *Service) { s.logger = logger } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService wires the form handler. contact supplies the current practice data.
func NewService(nonces NonceVerifier, verifier recaptcha.Verifier, transport mail.Transport, contact func(ctx context.Context) content.ContactData, opts ...Option) *Service {
	s := &Service{
		nonces:    nonces,
		recaptcha: verifier,
		transport: transport,
		contact:   contact,
		logger:    zap.NewNop(),
		now:       time.Now,
		validate:  validator.New(),
		policy:    bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"contact.submissions",
		metric.WithDescription("Contact form submissions by outcome"),
	)
	if err != nil {
		s.logger.Warn("contact: unable to register submission metric", zap.Error(err))
	}
	s.submitted = counter
	return s
}

// Submit validates req and sends the notification and confirmation mails.
// Validation stops at the first failure, in this order: nonce, reCAPTCHA,
// required fields, email format, privacy consent. The mail transport is only
// used once every check has passed.
func (s *Service) Submit(ctx context.Context, req Request) (Result, error) {
	lang := i18n.Normalize(req.Lang)
	logger := requestctx.Logger(ctx)
	if logger == requestctx.NoopLogger() {
		logger = s.logger
	}

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "contact.submit")
	defer span.End()

	if err := s.nonces.Verify(req.Nonce, NonceAction); err != nil {
		return s.reject(ctx, lang, CodeInvalidNonce, "nonce", nil)
	}

	verdict := s.recaptcha.Verify(ctx, req.RecaptchaToken, RecaptchaAction, req.RemoteIP)
	span.SetAttributes(attribute.String("recaptcha.reason", verdict.Reason))
	if !verdict.Success {
		return s.reject(ctx, lang, CodeRecaptcha, "g-recaptcha-response", nil)
	}

	f := fields{
		FirstName: s.clean(req.FirstName),
		LastName:  s.clean(req.LastName),
		Email:     s.clean(req.Email),
		Subject:   s.clean(req.Subject),
		Message:   s.clean(req.Message),
	}
	if field := s.firstMissing(f); field != "" {
		return s.reject(ctx, lang, CodeMissingField, field, []any{fieldLabel(lang, field)})
	}
	if err := s.validate.Var(f.Email, "email"); err != nil {
		return s.reject(ctx, lang, CodeInvalidEmail, "email", nil)
	}
	if !req.Privacy {
		return s.reject(ctx, lang, CodePrivacyRequired, "privacy", nil)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, req.RemoteIP)
		if err != nil {
			logger.Warn("contact: rate limiter unavailable; allowing submission", zap.Error(err))
		} else if !allowed {
			return s.reject(ctx, lang, CodeRateLimited, "", nil)
		}
	}

	practice := s.contact(ctx)
	recipient := s.recipient
	if recipient == "" {
		recipient = practice.Email
	}
	sub := mail.Submission{
		Lang:          lang,
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		Email:         f.Email,
		Phone:         s.clean(req.Phone),
		Subject:       f.Subject,
		Message:       f.Message,
		ReceivedAt:    s.now(),
		PracticeName:  practice.PracticeName,
		PracticePhone: practice.Phone.Display,
		PracticeEmail: practice.Email,
	}

	notification, err := mail.Notification(recipient, sub)
	if err == nil {
		err = s.transport.Send(ctx, notification)
	}
	if err != nil {
		logger.Error("contact: notification mail failed", zap.Error(err))
		span.RecordError(err)
		s.count(ctx, CodeSendFailed)
		return Result{}, &DeliveryError{Message: message(lang, CodeSendFailed), Err: err}
	}

	confirmationSent := true
	confirmation, err := mail.Confirmation(sub)
	if err == nil {
		err = s.transport.Send(ctx, confirmation)
	}
	if err != nil {
		confirmationSent = false
		logger.Warn("contact: confirmation mail failed", zap.Error(err))
	}

	result := Result{
		ID:               ulid.Make().String(),
		Message:          message(lang, "success"),
		ConfirmationSent: confirmationSent,
		Score:            verdict.Score,
	}
	s.persist(ctx, logger, Submission{
		ID:               result.ID,
		ReceivedAt:       sub.ReceivedAt.UTC(),
		Lang:             lang,
		FirstName:        sub.FirstName,
		LastName:         sub.LastName,
		Email:            sub.Email,
		Phone:            sub.Phone,
		Subject:          sub.Subject,
		Message:          sub.Message,
		RecaptchaScore:   verdict.Score,
		NotificationSent: true,
		ConfirmationSent: confirmationSent,
	})
	s.count(ctx, "ok")
	return result, nil
}

func (s *Service) persist(ctx context.Context, logger *zap.Logger, sub Submission) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, sub); err != nil {
		logger.Warn("contact: storing submission failed", zap.String("submission_id", sub.ID), zap.Error(err))
	}
}

func (s *Service) reject(ctx context.Context, lang, code, field string, args []any) (Result, error) {
	msg := message(lang, code)
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	s.count(ctx, code)
	return Result{}, &ValidationError{Code: code, Field: field, Message: msg}
}

func (s *Service) firstMissing(f fields) string {
	err := s.validate.Struct(f)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "message"
	}
	missing := map[string]bool{}
	for _, fe := range verrs {
		missing[fe.StructField()] = true
	}
	for _, rf := range requiredOrder {
		if missing[rf.structField] {
			return rf.formField
		}
	}
	return ""
}

// clean trims input and strips all markup.
func (s *Service) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(strings.TrimSpace(v))))
}

func (s *Service) count(ctx context.Context, outcome string) {
	if s.submitted == nil {
		return
	}
	s.submitted.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
