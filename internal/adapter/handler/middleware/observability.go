package middleware

import (
	"net/http"
	"time"

	"github.com/presencelab/beacon-bridge/internal/infrastructure/observability"
)

// Observability records HTTP metrics for requests. A nil *Metrics yields a
// pass-through middleware.
func Observability(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Increment active requests
			metrics.HTTPRequestsActive.Add(r.Context(), 1)
			defer metrics.HTTPRequestsActive.Add(r.Context(), -1)

			// Wrap response writer to capture status code
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// Process request
			next.ServeHTTP(rw, r)

			// Record metrics
			duration := time.Since(start)
			metrics.RecordHTTPRequest(
				r.Context(),
				r.Method,
				r.URL.Path,
				rw.statusCode,
				duration,
			)
		})
	}
}
