package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/evyataryagoni/mashup/internal/cache"
	"github.com/evyataryagoni/mashup/internal/geo"
	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/evyataryagoni/mashup/internal/metrics"
	"github.com/evyataryagoni/mashup/internal/models"
)

// CachedStore caches Search results in front of another Store
//
// Only Search is cached: the places table never changes while the server
// runs, so a query always has the same answer. InBounds is a random sample
// and is always passed through.
type CachedStore struct {
	next    Store
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewCachedStore wraps next; m and log may be nil
func NewCachedStore(next Store, c cache.Cache, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) *CachedStore {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedStore{
		next:    next,
		cache:   c,
		ttl:     ttl,
		metrics: m,
		logger:  log.WithComponent("CachedStore"),
	}
}

// searchKey encodes every field of the query; a postal code "021" and a
// place prefix "021" must not share an entry
func searchKey(q geo.Query) string {
	return "search:" + q.Kind.String() + ":" + q.Text + ":" + q.Region
}

// Search serves from cache when possible. Cache failures are logged and
// treated as misses so the database remains the source of truth.
func (s *CachedStore) Search(ctx context.Context, q geo.Query) ([]models.Place, error) {
	key := searchKey(q)

	data, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.record("error")
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	case ok:
		var places []models.Place
		if err := json.Unmarshal(data, &places); err == nil {
			s.record("hit")
			return places, nil
		}
		s.record("miss")
		s.logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	default:
		s.record("miss")
	}

	places, err := s.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(places)
	if err == nil {
		err = s.cache.Set(ctx, key, data, s.ttl)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}

	return places, nil
}

// InBounds is never cached
func (s *CachedStore) InBounds(ctx context.Context, b geo.Bounds, limit int) ([]models.Place, error) {
	return s.next.InBounds(ctx, b, limit)
}

func (s *CachedStore) record(result string) {
	if s.metrics != nil {
		s.metrics.CacheLookupsTotal.WithLabelValues("search", result).Inc()
	}
}

// Close closes the wrapped store and the cache
func (s *CachedStore) Close() error {
	storeErr := s.next.Close()
	cacheErr := s.cache.Close()
	if storeErr != nil {
		return storeErr
	}
	return cacheErr
}
