package service

import (
	"context"
	"strconv"

	"github.com/evyataryagoni/mashup/internal/geo"
	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/evyataryagoni/mashup/internal/metrics"
	"github.com/evyataryagoni/mashup/internal/models"
	"github.com/evyataryagoni/mashup/internal/store"
)

// PlaceService handles business logic for place search and viewport sampling
// This is the service layer - it sits between handlers and stores
//
// Responsibilities:
//   - Parse the free-text query and the viewport corners
//   - Call the store
//   - Record metrics and log outcomes
type PlaceService struct {
	store   store.Store      // The datastore (SQL, GeoNames file, or cached)
	metrics *metrics.Metrics // Metrics collector
	logger  *logger.Logger   // Structured logger
}

// NewPlaceService creates a new place service
//
// Parameters:
//   - store: any implementation of the Store interface
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewPlaceService(store store.Store, m *metrics.Metrics, log *logger.Logger) *PlaceService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &PlaceService{
		store:   store,
		metrics: m,
		logger:  log.WithComponent("PlaceService"),
	}
}

// Search finds places matching the free-text query q
//
// Flow:
//  1. Classify q (postal code, place prefix, place with region code or name)
//  2. Query the store
//  3. Return the places, in store order
//
// An empty q is a prefix match on the empty string and returns every place.
// The result is never nil on success.
func (s *PlaceService) Search(ctx context.Context, q string) ([]models.Place, error) {
	query := geo.ParseQuery(q)

	s.logger.Debug().
		Str("q", q).
		Str("kind", query.Kind.String()).
		Str("text", query.Text).
		Str("region", query.Region).
		Msg("Searching places")

	places, err := s.store.Search(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Str("q", q).Msg("Store error during place search")
		s.recordSearch(query.Kind, "error", 0)
		return nil, err
	}
	if places == nil {
		places = []models.Place{}
	}

	s.recordSearch(query.Kind, "success", len(places))
	return places, nil
}

// Update samples up to store.ViewportLimit places inside the viewport given
// by the sw and ne corners ("lat,lng")
//
// Returns:
//   - []models.Place: one place per (country, name, region) group, random order
//   - error: geo.ErrMissingSW/NE, geo.ErrInvalidSW/NE, or a store error
func (s *PlaceService) Update(ctx context.Context, sw, ne string) ([]models.Place, error) {
	b, err := geo.ParseBounds(sw, ne)
	if err != nil {
		s.logger.Warn().Err(err).Str("sw", sw).Str("ne", ne).Msg("Invalid viewport")
		s.recordViewport(false, "invalid")
		return nil, err
	}

	crosses := b.CrossesAntimeridian()
	places, err := s.store.InBounds(ctx, b, store.ViewportLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("sw", sw).Str("ne", ne).Msg("Store error during viewport lookup")
		s.recordViewport(crosses, "error")
		return nil, err
	}
	if places == nil {
		places = []models.Place{}
	}

	s.logger.Debug().
		Bool("crosses_antimeridian", crosses).
		Int("count", len(places)).
		Msg("Viewport lookup successful")
	s.recordViewport(crosses, "success")
	return places, nil
}

func (s *PlaceService) recordSearch(kind geo.Kind, result string, n int) {
	if s.metrics == nil {
		return
	}
	s.metrics.PlaceSearchesTotal.WithLabelValues(kind.String(), result).Inc()
	if result == "success" {
		s.metrics.PlaceSearchResults.Observe(float64(n))
	}
}

func (s *PlaceService) recordViewport(crosses bool, result string) {
	if s.metrics != nil {
		s.metrics.ViewportLookupsTotal.WithLabelValues(strconv.FormatBool(crosses), result).Inc()
	}
}

// Close cleans up resources
// This will close the underlying store (database connections, cache clients)
func (s *PlaceService) Close() error {
	return s.store.Close()
}
