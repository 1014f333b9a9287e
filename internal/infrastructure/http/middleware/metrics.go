package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizhub_login_attempts_total",
			Help: "Login attempts by outcome (success, failure, blocked)",
		},
		[]string{"outcome"},
	)
	submissionsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizhub_submissions_accepted_total",
			Help: "Quiz submissions accepted for asynchronous scoring",
		},
	)
)

// PrometheusMiddleware records request duration.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(ww.Status())
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// RecordLoginAttempt counts a login outcome for Prometheus.
func RecordLoginAttempt(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordSubmissionAccepted counts an accepted quiz submission.
func RecordSubmissionAccepted() {
	submissionsScored.Inc()
}
