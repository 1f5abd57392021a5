package httpx

import "net/http"

// Envelope is the AJAX response shape shared by all admin and public actions:
// {"success": true|false, "data": {...}}.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// Message is the data payload used when an action only reports text.
type Message struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// WriteSuccess writes a 200 success envelope.
func WriteSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteFailure writes a failure envelope with the given status.
func WriteFailure(w http.ResponseWriter, status int, data any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, Envelope{Success: false, Data: data})
}
