package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey struct{}

// Logger writes one JSON line per event with the service, action and request id
// attached, so lines from the HTTP layer and the notification fan-out can be joined.
type Logger struct {
	base *slog.Logger
}

func New(service string, w io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	hostname, _ := os.Hostname()
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{
		base: slog.New(h).With(
			slog.String("service", service),
			slog.String("hostname", hostname),
		),
	}
}

// Nop discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{base: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

func (l *Logger) Debug(requestID, action, message string, kv ...any) {
	l.log(slog.LevelDebug, requestID, action, message, nil, kv)
}

func (l *Logger) Info(requestID, action, message string, kv ...any) {
	l.log(slog.LevelInfo, requestID, action, message, nil, kv)
}

func (l *Logger) Warn(requestID, action, message string, kv ...any) {
	l.log(slog.LevelWarn, requestID, action, message, nil, kv)
}

func (l *Logger) Error(requestID, action, message string, err error, kv ...any) {
	l.log(slog.LevelError, requestID, action, message, err, kv)
}

func (l *Logger) log(level slog.Level, requestID, action, message string, err error, kv []any) {
	attrs := make([]any, 0, len(kv)+3)
	attrs = append(attrs, slog.String("action", action))
	if requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if err != nil {
		attrs = append(attrs, slog.Group("error", slog.String("msg", err.Error())))
	}
	attrs = append(attrs, kv...)
	l.base.Log(context.Background(), level, message, attrs...)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
