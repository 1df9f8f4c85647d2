package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache stores opaque byte values with a per-entry TTL.
// Lookups are keyed by plain strings; implementations may namespace them.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key; a zero ttl means no expiry
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases connections or background state
	Close() error
}

// Config selects and configures a cache backend
type Config struct {
	Type string // "memory", "redis" or "none"

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// New creates a cache based on the configuration
func New(cfg Config) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "memory", "":
		return NewMemoryCache(), nil

	case "redis":
		c, err := NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis cache: %w", err)
		}
		return c, nil

	case "none":
		return Nop{}, nil

	default:
		return nil, fmt.Errorf("unknown cache type: %s (supported: 'memory', 'redis', 'none')", cfg.Type)
	}
}

// Nop never stores anything; every Get is a miss
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Close() error { return nil }
