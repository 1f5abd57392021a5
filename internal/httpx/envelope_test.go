package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteSuccess(rec, Message{Message: "ok"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "ok", body.Data["message"])
}

func TestWriteFailureDefaultsToBadRequest(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteFailure(rec, 0, Message{Message: "nope", Code: "invalid"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
	require.Contains(t, rec.Body.String(), `"code":"invalid"`)
}

func TestWriteServerErrorCarriesRequestID(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	rec := httptest.NewRecorder()
	WriteServerError(ctx, rec, "", "line1\nline2")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var body struct {
		Success bool        `json:"success"`
		Data    ServerError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "line1 line2", body.Data.Message)
	require.Equal(t, "internal", body.Data.Code)
	require.Equal(t, "req-42", body.Data.RequestID)
	require.Empty(t, body.Data.TraceID)
}
