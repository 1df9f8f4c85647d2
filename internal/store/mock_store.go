package store

import (
	"context"
	"sync"

	"github.com/evyataryagoni/mashup/internal/geo"
	"github.com/evyataryagoni/mashup/internal/models"
)

// MockStore is a test double for the Store interface
// It answers from an in-memory GeoNamesStore and records every call
type MockStore struct {
	mu       sync.Mutex
	delegate *GeoNamesStore

	// Track method calls for verification in tests
	SearchCalls   []geo.Query
	InBoundsCalls []geo.Bounds
	CloseCalled   bool

	// Control behavior for error scenarios
	SearchError   error
	InBoundsError error
	CloseError    error
}

// SamplePlaces is the fixture data behind NewMockStore
func SamplePlaces() []models.Place {
	return []models.Place{
		{CountryCode: "US", PostalCode: "02138", PlaceName: "Cambridge", AdminName1: "Massachusetts", AdminCode1: "MA", Latitude: 42.377, Longitude: -71.1256},
		{CountryCode: "US", PostalCode: "02139", PlaceName: "Cambridge", AdminName1: "Massachusetts", AdminCode1: "MA", Latitude: 42.3647, Longitude: -71.1042},
		{CountryCode: "US", PostalCode: "05444", PlaceName: "Cambridge", AdminName1: "Vermont", AdminCode1: "VT", Latitude: 44.6437, Longitude: -72.8787},
		{CountryCode: "US", PostalCode: "75460", PlaceName: "Paris", AdminName1: "Texas", AdminCode1: "TX", Latitude: 33.6609, Longitude: -95.5555},
		{CountryCode: "US", PostalCode: "38242", PlaceName: "Paris", AdminName1: "Tennessee", AdminCode1: "TN", Latitude: 36.302, Longitude: -88.3267},
		{CountryCode: "US", PostalCode: "96799", PlaceName: "Pago Pago", AdminName1: "American Samoa", AdminCode1: "AS", Latitude: -14.2781, Longitude: -170.7025},
		{CountryCode: "FJ", PostalCode: "0000", PlaceName: "Labasa", AdminName1: "Northern", AdminCode1: "03", Latitude: -16.4167, Longitude: 179.3833},
		{CountryCode: "GA", PostalCode: "0001", PlaceName: "Libreville", AdminName1: "Estuaire", AdminCode1: "01", Latitude: 0.3901, Longitude: 9.4544},
	}
}

// NewMockStore creates a mock store pre-populated with SamplePlaces
func NewMockStore() *MockStore {
	return NewMockStoreWith(SamplePlaces())
}

// NewEmptyMockStore creates a mock store with no data
func NewEmptyMockStore() *MockStore {
	return NewMockStoreWith(nil)
}

// NewMockStoreWith creates a mock store backed by the given places
func NewMockStoreWith(places []models.Place) *MockStore {
	return &MockStore{
		delegate:      NewGeoNamesStoreFromPlaces(places),
		SearchCalls:   []geo.Query{},
		InBoundsCalls: []geo.Bounds{},
	}
}

// Search implements the Store interface
func (m *MockStore) Search(ctx context.Context, q geo.Query) ([]models.Place, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, q)
	err := m.SearchError
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.delegate.Search(ctx, q)
}

// InBounds implements the Store interface
func (m *MockStore) InBounds(ctx context.Context, b geo.Bounds, limit int) ([]models.Place, error) {
	m.mu.Lock()
	m.InBoundsCalls = append(m.InBoundsCalls, b)
	err := m.InBoundsError
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.delegate.InBounds(ctx, b, limit)
}

// Close implements the Store interface
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return m.CloseError
}
