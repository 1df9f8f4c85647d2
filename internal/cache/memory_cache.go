package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// sweepInterval is how often expired entries are purged in the background
const sweepInterval = 5 * time.Minute

// MemoryCache is a process-local cache for single-instance deployments
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return newMemoryCache(sweepInterval)
}

func newMemoryCache(cleanup time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(gocache.NoExpiration, cleanup),
	}
}

// Get returns a copy of the stored value if present and not expired
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}

	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true, nil
}

// Set stores a copy of value, so callers may reuse their buffer.
// A ttl of zero or less keeps the entry until Close.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.items.Set(key, stored, ttl)
	return nil
}

// Len returns the number of stored entries, expired ones included until swept
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}

// Close drops all entries
func (c *MemoryCache) Close() error {
	c.items.Flush()
	return nil
}
