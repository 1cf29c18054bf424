// Package logger configures the process-wide slog logger and carries
// request-scoped attributes through context.
package logger

import (
	"context"
	"log/slog"
	"os"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	DocumentKey  contextKey = "document_id"
)

type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

func Init(cfg Config) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// WithContext returns the default logger enriched with whatever scoped
// attributes the context carries.
func WithContext(ctx context.Context) *slog.Logger {
	log := slog.Default()
	if v, ok := ctx.Value(RequestIDKey).(string); ok && v != "" {
		log = log.With("requestId", v)
	}
	if v, ok := ctx.Value(UserIDKey).(string); ok && v != "" {
		log = log.With("userId", v)
	}
	if v, ok := ctx.Value(DocumentKey).(string); ok && v != "" {
		log = log.With("documentId", v)
	}
	return log
}

func Info(ctx context.Context, msg string, args ...any)  { WithContext(ctx).Info(msg, args...) }
func Debug(ctx context.Context, msg string, args ...any) { WithContext(ctx).Debug(msg, args...) }
func Warn(ctx context.Context, msg string, args ...any)  { WithContext(ctx).Warn(msg, args...) }
func Error(ctx context.Context, msg string, args ...any) { WithContext(ctx).Error(msg, args...) }
