package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/config"
)

var sample = Submission{
	Lang:          "de",
	FirstName:     "Erika",
	LastName:      "Mustermann",
	Email:         "erika@example.de",
	Phone:         "0170 1234567",
	Subject:       "Terminanfrage",
	Message:       "Hallo,\n<b>bitte</b> um Rückruf.",
	ReceivedAt:    time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC),
	PracticeName:  "Praxis am Park",
	PracticePhone: "030 624 792",
	PracticeEmail: "info@praxis.example",
}

func TestNotificationBody(t *testing.T) {
	msg, err := Notification("empfang@praxis.example", sample)
	require.NoError(t, err)
	require.Equal(t, []string{"empfang@praxis.example"}, msg.To)
	require.Equal(t, "erika@example.de", msg.ReplyTo)
	require.Equal(t, "Neue Kontaktanfrage: Terminanfrage", msg.Subject)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(msg.HTML))
	require.NoError(t, err)
	require.Contains(t, doc.Find("h1").Text(), "Neue Kontaktanfrage")
	require.Contains(t, doc.Text(), "Erika Mustermann")
	require.Contains(t, doc.Text(), "02.04.2024 09:30")
	require.Equal(t, 0, doc.Find("p b").Length(), "message markup must be escaped")
	require.Equal(t, 1, doc.Find("p br").Length())
}

func TestConfirmationBodyEnglish(t *testing.T) {
	s := sample
	s.Lang = "en"
	msg, err := Confirmation(s)
	require.NoError(t, err)
	require.Equal(t, []string{"erika@example.de"}, msg.To)
	require.Equal(t, "Your request to Praxis am Park", msg.Subject)
	require.Contains(t, msg.HTML, "Thank you for your message")
	require.Contains(t, msg.Text, "Kind regards")
}

func TestNewSelectsTransport(t *testing.T) {
	require.IsType(t, &LogTransport{}, New(config.MailConfig{}, zap.NewNop()))
	require.IsType(t, &SMTPTransport{}, New(config.MailConfig{Host: "smtp.example.de"}, zap.NewNop()))
}

func TestLogTransportRequiresRecipient(t *testing.T) {
	tr := &LogTransport{logger: zap.NewNop()}
	require.True(t, errors.Is(tr.Send(context.Background(), Message{}), ErrNoRecipient))
	require.NoError(t, tr.Send(context.Background(), Message{To: []string{"a@example.de"}}))
}

func TestSMTPBuildSetsHeaders(t *testing.T) {
	tr := &SMTPTransport{cfg: config.MailConfig{From: "praxis@example.de", FromName: "Praxis am Park"}}
	m, err := tr.build(Message{To: []string{"erika@example.de"}, ReplyTo: "info@example.de", Subject: "Hallo", HTML: "<p>x</p>", Text: "x"})
	require.NoError(t, err)
	require.Equal(t, []string{"Hallo"}, m.GetGenHeader(gomail.HeaderSubject))
	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	require.Equal(t, []string{"erika@example.de"}, rcpts)
	sender, err := m.GetSender(false)
	require.NoError(t, err)
	require.Equal(t, "praxis@example.de", sender)

	_, err = tr.build(Message{})
	require.ErrorIs(t, err, ErrNoRecipient)

	_, err = tr.build(Message{To: []string{"not an address"}})
	require.Error(t, err)
}

func TestRecordingTransport(t *testing.T) {
	tr := &RecordingTransport{Fail: func(m Message) error {
		if m.Subject == "fail" {
			return errors.New("smtp down")
		}
		return nil
	}}
	require.Error(t, tr.Send(context.Background(), Message{Subject: "fail"}))
	require.NoError(t, tr.Send(context.Background(), Message{Subject: "ok"}))
	require.Len(t, tr.Messages(), 1)
}
