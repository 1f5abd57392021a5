package contact

var messages = map[string]map[string]string{
	"de": {
		CodeInvalidNonce:    "Die Sicherheitsprüfung ist fehlgeschlagen. Bitte laden Sie die Seite neu und versuchen Sie es erneut.",
		CodeRecaptcha:       "Die Spam-Prüfung ist fehlgeschlagen. Bitte versuchen Sie es erneut.",
		CodeMissingField:    "Bitte füllen Sie das Feld „%s“ aus.",
		CodeInvalidEmail:    "Bitte geben Sie eine gültige E-Mail-Adresse ein.",
		CodePrivacyRequired: "Bitte stimmen Sie der Datenschutzerklärung zu.",
		CodeRateLimited:     "Sie haben zu viele Anfragen gesendet. Bitte versuchen Sie es später erneut.",
		CodeSendFailed:      "Ihre Nachricht konnte leider nicht gesendet werden. Bitte versuchen Sie es später erneut oder rufen Sie uns an.",
		"success":           "Vielen Dank für Ihre Nachricht! Wir melden uns so schnell wie möglich bei Ihnen.",
	},
	"en": {
		CodeInvalidNonce:    "The security check failed. Please reload the page and try again.",
		CodeRecaptcha:       "The spam check failed. Please try again.",
		CodeMissingField:    "Please fill in the field “%s”.",
		CodeInvalidEmail:    "Please enter a valid email address.",
		CodePrivacyRequired: "Please accept the privacy policy.",
		CodeRateLimited:     "You have sent too many requests. Please try again later.",
		CodeSendFailed:      "Unfortunately your message could not be sent. Please try again later or give us a call.",
		"success":           "Thank you for your message! We will get back to you as soon as possible.",
	},
}

var fieldLabels = map[string]map[string]string{
	"de": {
		"first_name": "Vorname",
		"last_name":  "Nachname",
		"email":      "E-Mail",
		"subject":    "Betreff",
		"message":    "Nachricht",
	},
	"en": {
		"first_name": "First name",
		"last_name":  "Last name",
		"email":      "Email",
		"subject":    "Subject",
		"message":    "Message",
	},
}

func message(lang, code string) string {
	if m, ok := messages[lang]; ok {
		return m[code]
	}
	return messages["de"][code]
}

func fieldLabel(lang, field string) string {
	if m, ok := fieldLabels[lang]; ok {
		return m[field]
	}
	return fieldLabels["de"][field]
}
