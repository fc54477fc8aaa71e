package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hbnb",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hbnb",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hbnb",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	authLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hbnb",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Total number of login attempts.",
		},
		[]string{"success"},
	)

	entityWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hbnb",
			Subsystem: "entities",
			Name:      "writes_total",
			Help:      "Total number of create, update and delete operations per entity.",
		},
		[]string{"entity", "operation"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		authLogins,
		entityWrites,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordLogin records a login attempt.
func RecordLogin(success bool) {
	result := "false"
	if success {
		result = "true"
	}
	authLogins.WithLabelValues(result).Inc()
}

// RecordEntityWrite records a mutating operation on an entity collection.
func RecordEntityWrite(entity, operation string) {
	entityWrites.WithLabelValues(entity, operation).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource ids so the path label stays low
// cardinality: /api/v1/places/<id>/reviews becomes /api/v1/places/:id/reviews.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) > 2 && (parts[2] == "auth" || parts[2] == "admin") {
		return "/" + strings.Join(parts, "/")
	}
	// parts[0]=api parts[1]=v1 parts[2]=resource parts[3]=id parts[4]=sub...
	out := parts[:0:0]
	out = append(out, parts[0], parts[1])
	for i := 2; i < len(parts); i++ {
		if i%2 == 1 {
			out = append(out, ":id")
		} else {
			out = append(out, parts[i])
		}
	}
	return "/" + strings.Join(out, "/")
}
