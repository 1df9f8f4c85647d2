package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port   string `validate:"required,numeric"`
	APIKey string `validate:"required"` // map API key injected into the index page
	Debug  bool   // no-cache headers and debug logging

	// Logging
	LogLevel  string `validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	LogPretty bool

	// Place database
	DatabaseDriver string `validate:"required,oneof=sqlite sqlite3 mysql postgres postgresql geonames"`
	DatabaseDSN    string `validate:"required"` // DSN, or a file path for sqlite/geonames

	// Cache for search results and articles
	CacheType string `validate:"oneof=memory redis none"`
	CacheTTL  int    `validate:"gte=0"` // seconds

	// Rate limiting
	RateLimitType   string `validate:"oneof=memory redis"`
	RateLimit       int    `validate:"gte=1"` // number of requests allowed
	RateLimitWindow int    `validate:"gte=1"` // time window in seconds (default: 1)

	// Redis configuration (cache and rate limiter)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// News feeds
	NewsFeedURL     string `validate:"required"` // %s is replaced by the escaped geo
	NewsFallbackURL string `validate:"required,url"`
	NewsTimeout     int    `validate:"gte=1"` // seconds
}

// Load reads configuration from environment variables with defaults
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	// In production/Docker, environment variables are set directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	debug := getEnvAsBool("DEBUG", false)
	defaultLevel := "info"
	if debug {
		defaultLevel = "debug"
	}

	return &Config{
		Port:   getEnv("PORT", "5000"),
		APIKey: os.Getenv("API_KEY"),
		Debug:  debug,

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", defaultLevel)),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseDSN:    getEnv("DATABASE_DSN", "mashup.db"),

		CacheType: strings.ToLower(getEnv("CACHE_TYPE", "memory")),
		CacheTTL:  getEnvAsInt("CACHE_TTL", 300),

		// Rate limiting (default: memory, 20 requests per 1 second)
		RateLimitType:   strings.ToLower(getEnv("RATE_LIMITER_TYPE", "memory")),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 20),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 1),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		NewsFeedURL:     getEnv("NEWS_FEED_URL", "https://news.google.com/news/rss/local/section/geo/%s"),
		NewsFallbackURL: getEnv("NEWS_FALLBACK_URL", "http://www.theonion.com/feeds/rss"),
		NewsTimeout:     getEnvAsInt("NEWS_TIMEOUT", 5),
	}
}

// Validate checks the loaded values; a missing API_KEY is reported here so
// the server refuses to start instead of failing on the first page view
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", envName(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// CacheTTLDuration returns CacheTTL as a time.Duration
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// RateLimitWindowDuration returns RateLimitWindow as a time.Duration
func (c *Config) RateLimitWindowDuration() time.Duration {
	return time.Duration(c.RateLimitWindow) * time.Second
}

// NewsTimeoutDuration returns NewsTimeout as a time.Duration
func (c *Config) NewsTimeoutDuration() time.Duration {
	return time.Duration(c.NewsTimeout) * time.Second
}

// envNames maps struct fields back to the variables they were read from
var envNames = map[string]string{
	"Port":            "PORT",
	"APIKey":          "API_KEY",
	"LogLevel":        "LOG_LEVEL",
	"DatabaseDriver":  "DATABASE_DRIVER",
	"DatabaseDSN":     "DATABASE_DSN",
	"CacheType":       "CACHE_TYPE",
	"CacheTTL":        "CACHE_TTL",
	"RateLimitType":   "RATE_LIMITER_TYPE",
	"RateLimit":       "RATE_LIMIT",
	"RateLimitWindow": "RATE_LIMIT_WINDOW",
	"NewsFeedURL":     "NEWS_FEED_URL",
	"NewsFallbackURL": "NEWS_FALLBACK_URL",
	"NewsTimeout":     "NEWS_TIMEOUT",
}

func envName(field string) string {
	if name, ok := envNames[field]; ok {
		return name
	}
	return field
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean
// Accepts the strconv.ParseBool forms (1, t, true, 0, f, false, ...)
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
