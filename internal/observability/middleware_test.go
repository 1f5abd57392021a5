package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vuducle/le-custom-sub000/internal/requestctx"
)

func newObservedRouter(t *testing.T) (*chi.Mux, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(InjectLoggerMiddleware(zap.New(core)))
	r.Use(TraceMiddleware)
	r.Use(RequestLoggerMiddleware)
	r.Use(RecoveryMiddleware(nil))
	r.Get("/kontakt/", func(w http.ResponseWriter, r *http.Request) {
		requestctx.Logger(r.Context()).Info("rendering")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/assets/*", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("css")) })
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	r.Post("/ajax/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	return r, logs
}

func TestRequestLoggerAddsCorrelationFields(t *testing.T) {
	r, logs := newObservedRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/kontakt/", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 2)
	handler := entries[0].ContextMap()
	require.Equal(t, "rendering", entries[0].Message)
	require.NotEmpty(t, handler["request_id"])
	require.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", handler["trace_id"])

	done := entries[1]
	require.Equal(t, "request completed", done.Message)
	require.Equal(t, zapcore.InfoLevel, done.Level)
	require.Equal(t, "/kontakt/", done.ContextMap()["route"])
	require.EqualValues(t, 200, done.ContextMap()["status"])
}

func TestAssetRequestsLogAtDebug(t *testing.T) {
	r, logs := newObservedRouter(t)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, 1, logs.Len())
	require.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
}

func TestRecoveryAnswersPagesWithText(t *testing.T) {
	r, logs := newObservedRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	require.Equal(t, zapcore.ErrorLevel, completed[0].Level)
}

func TestRecoveryAnswersAjaxWithEnvelope(t *testing.T) {
	r, _ := newObservedRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ajax/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
	require.Contains(t, rec.Body.String(), `"request_id"`)
}

func TestCleanStripsControlCharacters(t *testing.T) {
	require.Equal(t, "/a b", clean("/a\n b\r", 10))
	require.Equal(t, "/abc", clean("/abcdef", 4))
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger("verbose", false)
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("debug", true)
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
