package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Submission is the data rendered into contact form mails.
type Submission struct {
	Lang          string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Subject       string
	Message       string
	ReceivedAt    time.Time
	PracticeName  string
	PracticePhone string
	PracticeEmail string
}

// FullName joins first and last name.
func (s Submission) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

type labels struct {
	NotificationSubject string
	ConfirmationSubject string
	Heading             string
	ConfirmHeading      string
	ConfirmIntro        string
	ConfirmOutro        string
	Name                string
	Email               string
	Phone               string
	Subject             string
	Message             string
	Received            string
	Greeting            string
	Regards             string
}

var mailLabels = map[string]labels{
	"de": {
		NotificationSubject: "Neue Kontaktanfrage: %s",
		ConfirmationSubject: "Ihre Anfrage bei %s",
		Heading:             "Neue Kontaktanfrage über die Website",
		ConfirmHeading:      "Vielen Dank für Ihre Nachricht",
		ConfirmIntro:        "wir haben Ihre Anfrage erhalten und melden uns so schnell wie möglich bei Ihnen.",
		ConfirmOutro:        "In dringenden Fällen erreichen Sie uns telefonisch unter",
		Name:                "Name",
		Email:               "E-Mail",
		Phone:               "Telefon",
		Subject:             "Betreff",
		Message:             "Nachricht",
		Received:            "Eingegangen am",
		Greeting:            "Guten Tag",
		Regards:             "Mit freundlichen Grüßen",
	},
	"en": {
		NotificationSubject: "New contact request: %s",
		ConfirmationSubject: "Your request to %s",
		Heading:             "New contact request via the website",
		ConfirmHeading:      "Thank you for your message",
		ConfirmIntro:        "we have received your request and will get back to you as soon as possible.",
		ConfirmOutro:        "For urgent matters please call us at",
		Name:                "Name",
		Email:               "Email",
		Phone:               "Phone",
		Subject:             "Subject",
		Message:             "Message",
		Received:            "Received",
		Greeting:            "Hello",
		Regards:             "Kind regards",
	},
}

func labelsFor(lang string) labels {
	if l, ok := mailLabels[lang]; ok {
		return l
	}
	return mailLabels["de"]
}

var bodyTemplates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"nl2br": func(s string) template.HTML {
		return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
	},
}).Parse(`
{{define "notification"}}<!DOCTYPE html>
<html><body style="margin:0;padding:24px;background:#f4f6f8;font-family:Arial,Helvetica,sans-serif;color:#1f2937;">
<table role="presentation" width="100%" style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:8px;padding:24px;">
<tr><td><h1 style="font-size:20px;color:#0f766e;margin:0 0 16px;">{{.L.Heading}}</h1>
<table role="presentation" width="100%" style="border-collapse:collapse;font-size:14px;">
<tr><td style="padding:6px 0;font-weight:bold;width:140px;">{{.L.Name}}</td><td>{{.S.FullName}}</td></tr>
<tr><td style="padding:6px 0;font-weight:bold;">{{.L.Email}}</td><td><a href="mailto:{{.S.Email}}" style="color:#0f766e;">{{.S.Email}}</a></td></tr>
{{if .S.Phone}}<tr><td style="padding:6px 0;font-weight:bold;">{{.L.Phone}}</td><td>{{.S.Phone}}</td></tr>{{end}}
<tr><td style="padding:6px 0;font-weight:bold;">{{.L.Subject}}</td><td>{{.S.Subject}}</td></tr>
<tr><td style="padding:6px 0;font-weight:bold;">{{.L.Received}}</td><td>{{.Received}}</td></tr>
</table>
<h2 style="font-size:16px;margin:24px 0 8px;">{{.L.Message}}</h2>
<p style="font-size:14px;line-height:1.5;background:#f9fafb;padding:12px;border-left:3px solid #0f766e;">{{nl2br .S.Message}}</p>
</td></tr></table></body></html>{{end}}

{{define "confirmation"}}<!DOCTYPE html>
<html><body style="margin:0;padding:24px;background:#f4f6f8;font-family:Arial,Helvetica,sans-serif;color:#1f2937;">
<table role="presentation" width="100%" style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:8px;padding:24px;">
<tr><td><h1 style="font-size:20px;color:#0f766e;margin:0 0 16px;">{{.L.ConfirmHeading}}</h1>
<p style="font-size:14px;line-height:1.5;">{{.L.Greeting}} {{.S.FullName}},<br>{{.L.ConfirmIntro}}</p>
<p style="font-size:14px;"><strong>{{.L.Subject}}:</strong> {{.S.Subject}}</p>
<p style="font-size:14px;line-height:1.5;background:#f9fafb;padding:12px;border-left:3px solid #0f766e;">{{nl2br .S.Message}}</p>
{{if .S.PracticePhone}}<p style="font-size:14px;">{{.L.ConfirmOutro}} {{.S.PracticePhone}}.</p>{{end}}
<p style="font-size:14px;">{{.L.Regards}}<br>{{.S.PracticeName}}</p>
</td></tr></table></body></html>{{end}}
`))

// Notification builds the mail to the practice. Replies go to the submitter.
func Notification(to string, s Submission) (Message, error) {
	l := labelsFor(s.Lang)
	html, err := render("notification", l, s)
	if err != nil {
		return Message{}, err
	}
	text := fmt.Sprintf("%s\n\n%s: %s\n%s: %s\n%s: %s\n%s: %s\n\n%s",
		l.Heading, l.Name, s.FullName(), l.Email, s.Email, l.Phone, s.Phone, l.Subject, s.Subject, s.Message)
	return Message{
		To:      []string{to},
		ReplyTo: s.Email,
		Subject: fmt.Sprintf(l.NotificationSubject, s.Subject),
		HTML:    html,
		Text:    text,
	}, nil
}

// Confirmation builds the acknowledgement sent to the submitter.
func Confirmation(s Submission) (Message, error) {
	l := labelsFor(s.Lang)
	html, err := render("confirmation", l, s)
	if err != nil {
		return Message{}, err
	}
	text := fmt.Sprintf("%s %s,\n%s\n\n%s: %s\n\n%s\n%s",
		l.Greeting, s.FullName(), l.ConfirmIntro, l.Subject, s.Subject, l.Regards, s.PracticeName)
	return Message{
		To:      []string{s.Email},
		ReplyTo: s.PracticeEmail,
		Subject: fmt.Sprintf(l.ConfirmationSubject, s.PracticeName),
		HTML:    html,
		Text:    text,
	}, nil
}

func render(name string, l labels, s Submission) (string, error) {
	received := s.ReceivedAt
	if received.IsZero() {
		received = time.Now()
	}
	var buf bytes.Buffer
	err := bodyTemplates.ExecuteTemplate(&buf, name, map[string]any{
		"L":        l,
		"S":        s,
		"Received": received.Format("02.01.2006 15:04"),
	})
	if err != nil {
		return "", fmt.Errorf("mail: render %s: %w", name, err)
	}
	return buf.String(), nil
}
