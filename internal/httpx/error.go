package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vuducle/le-custom-sub000/internal/requestctx"
)

// ServerError is the failure payload for unexpected errors. The ids let a
// visitor's report be matched against the request log.
type ServerError struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// WriteServerError writes a 500 failure envelope tagged with the ids found on ctx.
func WriteServerError(ctx context.Context, w http.ResponseWriter, code, message string) {
	if code == "" {
		code = "internal"
	}
	WriteFailure(w, http.StatusInternalServerError, ServerError{
		Message:   oneLine(message, 512),
		Code:      oneLine(code, 80),
		RequestID: oneLine(middleware.GetReqID(ctx), 80),
		TraceID:   oneLine(requestctx.TraceID(ctx), 64),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func oneLine(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
