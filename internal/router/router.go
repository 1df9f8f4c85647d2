package router

import (
	"net/http"

	"github.com/evyataryagoni/mashup/internal/handler"
	"github.com/evyataryagoni/mashup/internal/limiter"
	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/evyataryagoni/mashup/internal/metrics"
	custommiddleware "github.com/evyataryagoni/mashup/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the application's HTTP handlers
type Handlers struct {
	Index    *handler.IndexHandler
	Places   *handler.PlaceHandler
	Articles *handler.ArticleHandler
}

// SetupRouter creates and configures the Chi router with all middleware and routes
//
// Parameters:
//   - h: the page, place and article handlers
//   - rateLimiter: the rate limiter (memory or Redis)
//   - m: metrics collector
//   - log: structured logger
//   - debug: when true every response is marked uncacheable
func SetupRouter(h Handlers, rateLimiter limiter.Limiter, m *metrics.Metrics, log *logger.Logger, debug bool) chi.Router {
	r := chi.NewRouter()

	// Order matters! RequestID should be first, then logging, then rate limiting
	r.Use(middleware.RequestID)                              // Add unique request ID to each request
	r.Use(middleware.RealIP)                                 // Get real client IP (handles proxies/load balancers)
	r.Use(custommiddleware.LoggingMiddleware(log))           // Structured logging
	r.Use(middleware.Recoverer)                              // Recover from panics and return 500
	r.Use(custommiddleware.RateLimitMiddleware(rateLimiter)) // Rate limiting per IP
	r.Use(custommiddleware.MetricsMiddleware(m))             // Collect Prometheus metrics
	if debug {
		r.Use(custommiddleware.NoCache)
	}

	r.Get("/", h.Index.Index)
	r.Get("/articles", h.Articles.Articles)
	r.Get("/search", h.Places.Search)
	r.Get("/update", h.Places.Update)

	// Health check endpoint - used by load balancers and monitoring
	r.Get("/health", healthCheckHandler)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// healthCheckHandler is a simple health check endpoint
// Returns 200 OK if the service is running
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
