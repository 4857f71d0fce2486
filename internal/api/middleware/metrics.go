package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hszk-dev/mediavault/internal/infrastructure/metrics"
)

// Metrics records per-request latency labeled by method and status class.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		metrics.HTTPRequestDurationSeconds.WithLabelValues(
			r.Method,
			strconv.Itoa(wrapped.status),
		).Observe(time.Since(start).Seconds())
	})
}
