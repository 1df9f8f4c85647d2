package middleware

import (
	"net/http"
	"time"

	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// LoggingMiddleware logs one structured line per completed request
func LoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// Get request ID from context (set by chi's RequestID middleware)
			reqLog := log.WithRequestID(middleware.GetReqID(r.Context()))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			// Determine log level based on status code
			logEvent := reqLog.Info()
			if status >= 500 {
				logEvent = reqLog.Error()
			} else if status >= 400 {
				logEvent = reqLog.Warn()
			}

			logEvent.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Str("route", routePattern(r)).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Msg("Request completed")
		})
	}
}
