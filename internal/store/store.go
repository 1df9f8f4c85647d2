package store

import (
	"context"

	"github.com/evyataryagoni/mashup/internal/geo"
	"github.com/evyataryagoni/mashup/internal/models"
)

// ViewportLimit is how many places a viewport lookup returns at most
const ViewportLimit = 10

// Store defines read access to the places table
// Implementations: SQLStore (GORM), GeoNamesStore (in-memory), CachedStore (decorator)
type Store interface {
	// Search returns every place matching the parsed query, in no particular order
	Search(ctx context.Context, q geo.Query) ([]models.Place, error)

	// InBounds returns up to limit places inside b, at most one per
	// (country_code, place_name, admin_code1), pseudo-randomly chosen
	InBounds(ctx context.Context, b geo.Bounds, limit int) ([]models.Place, error)

	// Close cleans up resources (database connections, caches, etc.)
	Close() error
}
