// Package observability sets up logging and tracing for the web server.
package observability

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vuducle/le-custom-sub000/internal/requestctx"
)

// NewLogger builds the process logger. Production output is JSON with the
// field names Cloud Logging expects; dev mode logs coloured console lines.
// Unknown levels mean info.
func NewLogger(levelName string, development bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(levelName))
	if err != nil || strings.TrimSpace(levelName) == "" {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
		enc := &cfg.EncoderConfig
		enc.MessageKey = "message"
		enc.TimeKey = "timestamp"
		enc.LevelKey = "severity"
		enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
		enc.EncodeDuration = zapcore.MillisDurationEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stdout"}
	return cfg.Build()
}

// WithLogger attaches logger to ctx for code running outside a request.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return requestctx.WithLogger(ctx, logger)
}
