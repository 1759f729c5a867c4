package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/points-backend/internal/logger"
)

// Logging puts a request-scoped logger in the context and logs completion.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		l := slog.Default().With("request_id", RequestIDFrom(r.Context()))
		r = r.WithContext(logger.WithLogger(r.Context(), l))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		l.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
