package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements distributed rate limiting using Redis
// This is suitable for multi-server deployments where rate limits need to be
// shared across all instances
//
// Algorithm: fixed window counter
//   - Key format: "ratelimit:{client}:{window index}"
//   - INCR and EXPIRE run in one MULTI/EXEC so a counter never outlives its window
//   - Counts above the limit are rejected until the next window
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewRedisLimiter creates a new Redis-based rate limiter
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number
//   - limit: allowed requests per window per client
//   - window: window length (rounded down to whole seconds, minimum 1s)
//   - log: logger (optional, can be nil)
func NewRedisLimiter(addr, password string, db int, limit int, window time.Duration, log *logger.Logger) (*RedisLimiter, error) {
	if log == nil {
		log = logger.Nop()
	}
	if limit < 1 {
		limit = 1
	}
	if window < time.Second {
		window = time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	return &RedisLimiter{
		client: client,
		limit:  int64(limit),
		window: window.Truncate(time.Second),
		logger: log.WithComponent("RedisLimiter"),
		now:    time.Now,
	}, nil
}

// Allow increments the client's counter for the current window
// On Redis errors the request is allowed; an unavailable limiter must not
// take the site down with it.
func (rl *RedisLimiter) Allow(key string) bool {
	windowSeconds := int64(rl.window / time.Second)
	index := rl.now().Unix() / windowSeconds
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, index)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, 2*rl.window)
		return nil
	})
	if err != nil {
		rl.logger.Warn().Err(err).Str("key", key).Msg("Rate limit check failed, allowing request")
		return true
	}

	return incr.Val() <= rl.limit
}

// Close closes the Redis connection and cleans up resources
func (rl *RedisLimiter) Close() error {
	if rl.client != nil {
		return rl.client.Close()
	}
	return nil
}
