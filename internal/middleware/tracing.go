package middleware

import (
	"net/http"
	"time"

	"github.com/hbnb-project/hbnb/internal/logging"
)

// TracingMiddleware attaches a trace id to every request and writes the
// access log line when the handler returns.
type TracingMiddleware struct {
	logger *logging.Logger
}

// NewTracingMiddleware creates a tracing middleware.
func NewTracingMiddleware(logger *logging.Logger) *TracingMiddleware {
	if logger == nil {
		logger = logging.NewDefault("http")
	}
	return &TracingMiddleware{logger: logger}
}

// Handler returns the tracing middleware handler.
func (m *TracingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = logging.NewTraceID()
		}

		ctx := logging.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-ID", traceID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rw, r.WithContext(ctx))

		m.logger.LogRequest(ctx, r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
