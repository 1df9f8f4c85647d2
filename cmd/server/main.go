package main

import (
	"log"
	"net/http"
	"time"

	"github.com/evyataryagoni/mashup/internal/cache"
	"github.com/evyataryagoni/mashup/internal/config"
	"github.com/evyataryagoni/mashup/internal/handler"
	"github.com/evyataryagoni/mashup/internal/limiter"
	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/evyataryagoni/mashup/internal/metrics"
	"github.com/evyataryagoni/mashup/internal/news"
	"github.com/evyataryagoni/mashup/internal/router"
	"github.com/evyataryagoni/mashup/internal/service"
	"github.com/evyataryagoni/mashup/internal/store"
)

func main() {
	// Load configuration
	appConfig := config.Load()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	// Initialize components
	appLogger := setupLogger(appConfig)
	metricsCollector := setupMetrics(appLogger)

	appCache := setupCache(appConfig, appLogger)
	dataStore := setupDataStore(appConfig, appCache, metricsCollector, appLogger)

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	// Build application layers
	placeService := service.NewPlaceService(dataStore, metricsCollector, appLogger)
	defer placeService.Close()

	newsClient := news.NewClient(news.Config{
		FeedURL:     appConfig.NewsFeedURL,
		FallbackURL: appConfig.NewsFallbackURL,
		Timeout:     appConfig.NewsTimeoutDuration(),
	}, appLogger)
	articleService := service.NewArticleService(newsClient, appCache, appConfig.CacheTTLDuration(), metricsCollector, appLogger)

	appRouter := router.SetupRouter(router.Handlers{
		Index:    handler.NewIndexHandler(appConfig.APIKey, appLogger),
		Places:   handler.NewPlaceHandler(placeService),
		Articles: handler.NewArticleHandler(articleService),
	}, rateLimiter, metricsCollector, appLogger, appConfig.Debug)

	// Start server
	startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  appConfig.LogLevel,
		Pretty: appConfig.LogPretty,
	})

	appLogger.Info().Msg("Starting Mashup Server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Bool("debug", appConfig.Debug).
		Str("database_driver", appConfig.DatabaseDriver).
		Str("cache_type", appConfig.CacheType).
		Int("cache_ttl", appConfig.CacheTTL).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Msg("Configuration loaded")

	return appLogger
}

// setupCache initializes the shared cache for search results and articles
// CACHE_TTL=0 disables caching regardless of CACHE_TYPE.
func setupCache(appConfig *config.Config, log *logger.Logger) cache.Cache {
	if appConfig.CacheTTL == 0 {
		log.Info().Msg("Cache disabled (CACHE_TTL=0)")
		return cache.Nop{}
	}

	appCache, err := cache.New(cache.Config{
		Type:          appConfig.CacheType,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
		KeyPrefix:     "mashup:",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}

	log.Info().Str("type", appConfig.CacheType).Msg("Cache initialized")
	return appCache
}

// setupDataStore opens the places store for the configured driver and puts
// the cache in front of it. Closing the returned store also closes the cache.
func setupDataStore(appConfig *config.Config, appCache cache.Cache, m *metrics.Metrics, log *logger.Logger) store.Store {
	var dataStore store.Store

	switch appConfig.DatabaseDriver {
	case "geonames":
		geoStore, err := store.NewGeoNamesStore(appConfig.DatabaseDSN)
		if err != nil {
			log.Fatal().Err(err).Str("path", appConfig.DatabaseDSN).Msg("Failed to load GeoNames file")
		}
		dataStore = geoStore

	default:
		db, err := store.Open(appConfig.DatabaseDriver, appConfig.DatabaseDSN, log)
		if err != nil {
			log.Fatal().Err(err).Str("driver", appConfig.DatabaseDriver).Msg("Failed to open places database")
		}
		dataStore = store.NewSQLStore(db, m)
	}

	log.Info().Str("driver", appConfig.DatabaseDriver).Msg("Place store initialized")

	return store.NewCachedStore(dataStore, appCache, appConfig.CacheTTLDuration(), m, log)
}

// setupRateLimiter initializes the rate limiter
// Supports in-memory and Redis-based rate limiting
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	rateLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:          appConfig.RateLimitType,
		Limit:         appConfig.RateLimit,
		Window:        appConfig.RateLimitWindowDuration(),
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Int("limit", appConfig.RateLimit).
		Int("window_seconds", appConfig.RateLimitWindow).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// setupMetrics initializes the Prometheus metrics collector
func setupMetrics(log *logger.Logger) *metrics.Metrics {
	metricsCollector := metrics.New()
	log.Info().Msg("Metrics initialized")
	return metricsCollector
}

// startServer starts the HTTP server and blocks
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	log.Info().
		Str("port", appConfig.Port).
		Str("map", "http://localhost:"+appConfig.Port+"/").
		Str("health_check", "http://localhost:"+appConfig.Port+"/health").
		Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
		Msg("Server is running")

	log.Fatal().Err(server.ListenAndServe()).Msg("Server failed")
}
