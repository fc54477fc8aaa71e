// Package logging provides structured logging for the HBnB API and the
// context keys used to carry request identity between middleware and handlers.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

// Context keys for request-scoped identity.
const (
	UserIDKey  contextKey = "user_id"
	RoleKey    contextKey = "role"
	TraceIDKey contextKey = "trace_id"
)

// Logger wraps a logrus logger bound to a service name.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger for the named service with the given level ("debug",
// "info", "warn", "error") and format ("json" or "text").
func New(service, level, format string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{entry: l.WithField("service", service)}
}

// NewDefault creates an info-level text logger for the named service.
func NewDefault(service string) *Logger {
	return New(service, "info", "text")
}

// NewNop returns a logger that discards all output. Intended for tests.
func NewNop() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(l)}
}

// WithField returns a logger with an extra field attached.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a logger with extra fields attached.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// WithContext attaches the identity fields carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	entry := l.entry
	if id := GetUserID(ctx); id != "" {
		entry = entry.WithField("user_id", id)
	}
	if role := GetRole(ctx); role != "" {
		entry = entry.WithField("role", role)
	}
	if trace := GetTraceID(ctx); trace != "" {
		entry = entry.WithField("trace_id", trace)
	}
	return &Logger{entry: entry}
}

func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }
func (l *Logger) Info(msg string)  { l.entry.Info(msg) }
func (l *Logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

// LogRequest emits the access-log line for a completed HTTP request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l.WithContext(ctx).WithFields(map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}).Info("http request")
}

// NewTraceID generates a fresh trace id.
func NewTraceID() string {
	return uuid.NewString()
}

// WithUserID stores the authenticated user id in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID returns the authenticated user id, or "".
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// WithRole stores the caller role in the context.
func WithRole(ctx context.Context, role string) context.Context {
	if role == "" {
		return ctx
	}
	return context.WithValue(ctx, RoleKey, role)
}

// GetRole returns the caller role, or "".
func GetRole(ctx context.Context) string {
	if v, ok := ctx.Value(RoleKey).(string); ok {
		return v
	}
	return ""
}

// WithTraceID stores a trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace id, or "".
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}
