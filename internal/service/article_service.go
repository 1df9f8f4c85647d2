package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/evyataryagoni/mashup/internal/cache"
	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/evyataryagoni/mashup/internal/metrics"
	"github.com/evyataryagoni/mashup/internal/models"
	"github.com/evyataryagoni/mashup/internal/news"
)

// ArticleFetcher looks up news articles for a location
// Implemented by *news.Client
type ArticleFetcher interface {
	Lookup(ctx context.Context, geo string) ([]models.Article, news.Source, error)
}

// ArticleService returns local news for a location, memoising each answer
type ArticleService struct {
	fetcher ArticleFetcher
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewArticleService creates a new article service
// A nil cache disables memoisation; m and log may be nil.
func NewArticleService(fetcher ArticleFetcher, c cache.Cache, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) *ArticleService {
	if log == nil {
		log = logger.NewDefault()
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &ArticleService{
		fetcher: fetcher,
		cache:   c,
		ttl:     ttl,
		metrics: m,
		logger:  log.WithComponent("ArticleService"),
	}
}

// Articles returns the articles for geo, which is passed to the feed
// verbatim. The result is never nil on success.
func (s *ArticleService) Articles(ctx context.Context, geo string) ([]models.Article, error) {
	key := "articles:" + geo

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("geo", geo).Msg("Cache read failed")
	} else if ok {
		var articles []models.Article
		if err := json.Unmarshal(data, &articles); err == nil {
			s.record("cache")
			return articles, nil
		}
	}

	articles, source, err := s.fetcher.Lookup(ctx, geo)
	if err != nil {
		s.logger.Error().Err(err).Str("geo", geo).Msg("Article lookup failed")
		s.record("error")
		return nil, err
	}
	if articles == nil {
		articles = []models.Article{}
	}

	if data, err := json.Marshal(articles); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("geo", geo).Msg("Cache write failed")
		}
	}

	s.logger.Debug().
		Str("geo", geo).
		Str("source", string(source)).
		Int("count", len(articles)).
		Msg("Article lookup successful")
	s.record(string(source))
	return articles, nil
}

func (s *ArticleService) record(source string) {
	if s.metrics != nil {
		s.metrics.ArticleLookupsTotal.WithLabelValues(source).Inc()
	}
}
