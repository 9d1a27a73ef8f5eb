package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/timesync-io/timesync/pkg/logger"
)

// Apply wraps the handler with the middleware chain
func Apply(next http.Handler) http.Handler {
	handler := next

	// Applied in reverse order (they wrap each other)
	handler = recoveryMiddleware(handler)
	handler = loggingMiddleware(handler)

	return handler
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger.HTTP(r.Method, r.URL.Path, rw.statusCode, time.Since(start), r.RemoteAddr)
	})
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithFields("server", "Panic recovered", zerolog.ErrorLevel, map[string]interface{}{
					"panic":  err,
					"method": r.Method,
					"path":   r.URL.Path,
				})

				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal server error"}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
