package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/evyataryagoni/mashup/internal/limiter"
	"github.com/evyataryagoni/mashup/internal/models"
)

// RateLimitMiddleware enforces rate limiting per client IP (returns 429 when exceeded)
// Mount it after chi's RealIP so RemoteAddr already holds the proxied client address.
func RateLimitMiddleware(lim limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow(clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{
					Error: "Rate limit exceeded. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port so every connection from one host shares a bucket
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
