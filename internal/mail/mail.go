// Package mail delivers outbound email over SMTP and renders the contact form
// notification and confirmation bodies.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gomail "github.com/wneessen/go-mail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/config"
)

const tracerName = "github.com/vuducle/le-custom-sub000/internal/mail"

var ErrNoRecipient = errors.New("mail: no recipient")

// Message is one outbound email with an HTML body and plain-text alternative.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Transport sends messages. Implementations do not retry.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the SMTP transport when a host is configured, else a transport
// that only logs messages.
func New(cfg config.MailConfig, logger *zap.Logger) Transport {
	if strings.TrimSpace(cfg.Host) == "" {
		return &LogTransport{logger: logger}
	}
	return &SMTPTransport{cfg: cfg, logger: logger}
}

// SMTPTransport delivers through an SMTP relay.
type SMTPTransport struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "mail.send")
	defer span.End()
	span.SetAttributes(attribute.Int("mail.recipients", len(msg.To)))

	m, err := t.build(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build message")
		return err
	}
	client, err := gomail.NewClient(t.cfg.Host, t.clientOptions()...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "smtp client")
		return fmt.Errorf("mail: smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "smtp send")
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func (t *SMTPTransport) build(msg Message) (*gomail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipient
	}
	m := gomail.NewMsg()
	if t.cfg.FromName != "" {
		if err := m.FromFormat(t.cfg.FromName, t.cfg.From); err != nil {
			return nil, fmt.Errorf("mail: from: %w", err)
		}
	} else if err := m.From(t.cfg.From); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("mail: to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("mail: reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		m.AddAlternativeString(gomail.TypeTextPlain, msg.Text)
	}
	return m, nil
}

func (t *SMTPTransport) clientOptions() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(t.cfg.Port)}
	if t.cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(t.cfg.Timeout))
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.cfg.Username),
			gomail.WithPassword(t.cfg.Password),
		)
	}
	if t.cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
		return opts
	}
	switch strings.ToLower(t.cfg.TLSPolicy) {
	case "none":
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	case "opportunistic":
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	return opts
}

// LogTransport writes messages to the log instead of sending them.
type LogTransport struct {
	logger *zap.Logger
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}
	if t.logger != nil {
		t.logger.Info("mail: smtp not configured; message logged",
			zap.Strings("to", msg.To),
			zap.String("reply_to", msg.ReplyTo),
			zap.String("subject", msg.Subject),
		)
	}
	return nil
}

// RecordingTransport keeps sent messages in memory and can be told to fail.
type RecordingTransport struct {
	mu   sync.Mutex
	Sent []Message
	// Fail decides per message whether Send returns an error.
	Fail func(msg Message) error
}

func (t *RecordingTransport) Send(_ context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Fail != nil {
		if err := t.Fail(msg); err != nil {
			return err
		}
	}
	t.Sent = append(t.Sent, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (t *RecordingTransport) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.Sent))
	copy(out, t.Sent)
	return out
}
