package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	ServiceKey   contextKey = "service"
)

var defaultLogger = newLogger(os.Stdout, os.Getenv("LOG_LEVEL"))

func newLogger(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetOutput swaps the process logger; tests use it to capture or silence logs.
func SetOutput(w io.Writer, level string) {
	defaultLogger = newLogger(w, level)
}

func Default() *slog.Logger {
	return defaultLogger
}

// WithContext returns the default logger enriched with request scoped values.
func WithContext(ctx context.Context) *slog.Logger {
	l := defaultLogger
	if ctx == nil {
		return l
	}
	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		l = l.With("request_id", requestID)
	}
	if userID := ctx.Value(UserIDKey); userID != nil {
		l = l.With("user_id", userID)
	}
	if service := ctx.Value(ServiceKey); service != nil {
		l = l.With("service", service)
	}
	return l
}

func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }

func InfoContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}
