package limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is the interface that all rate limiters must implement
// This allows us to easily swap between in-memory and Redis implementations
type Limiter interface {
	// Allow checks if a request from the given client should be allowed
	// Returns true if allowed, false if rate limited
	Allow(key string) bool

	// Close cleans up any resources (Redis connections, goroutines, etc.)
	Close() error
}

// idleTimeout is how long a client may stay silent before its limiter is dropped
const idleTimeout = 5 * time.Minute

// visitor pairs a client's token bucket with the last time it was used
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per client key
// This is an in-memory implementation suitable for single-server deployments
//
// Each bucket holds `limit` tokens and refills one token every window/limit,
// so a client may burst its whole allowance and then sustain limit per window.
type MemoryLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	every       rate.Limit
	burst       int
	lastCleanup time.Time
}

// NewMemoryLimiter creates a new in-memory rate limiter
//
// Parameters:
//   - limit: allowed requests per window per client (at least 1)
//   - window: length of the window (e.g., 1s)
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &MemoryLimiter{
		visitors:    make(map[string]*visitor),
		every:       rate.Every(window / time.Duration(limit)),
		burst:       limit,
		lastCleanup: time.Now(),
	}
}

// Allow checks if a request from the given client should be allowed
func (rl *MemoryLimiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.maybeCleanup(now)
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// maybeCleanup drops limiters idle for longer than idleTimeout
// Runs at most once per idleTimeout; the caller holds rl.mu.
func (rl *MemoryLimiter) maybeCleanup(now time.Time) {
	if now.Sub(rl.lastCleanup) < idleTimeout {
		return
	}
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > idleTimeout {
			delete(rl.visitors, key)
		}
	}
	rl.lastCleanup = now
}

// Close satisfies the Limiter interface; there is nothing to release
func (rl *MemoryLimiter) Close() error {
	return nil
}
