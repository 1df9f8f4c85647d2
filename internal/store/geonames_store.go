package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/evyataryagoni/mashup/internal/geo"
	"github.com/evyataryagoni/mashup/internal/models"
)

// geoNamesFields is the column count of a GeoNames postal code dump
const geoNamesFields = 12

// ReadGeoNames parses a GeoNames postal code file (tab-separated, no header)
//
// Format: country_code, postal_code, place_name, admin_name1, admin_code1,
// admin_name2, admin_code2, admin_name3, admin_code3, latitude, longitude, accuracy
// Example: US	02138	Cambridge	Massachusetts	MA	Middlesex	017			42.377	-71.1256	1
//
// Rows with too few columns or unparseable coordinates are skipped; the
// number skipped is returned alongside the places.
func ReadGeoNames(r io.Reader) ([]models.Place, int, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var places []models.Place
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to read GeoNames file: %w", err)
		}

		place, ok := parseGeoNamesRecord(record)
		if !ok {
			skipped++
			continue
		}
		places = append(places, place)
	}

	return places, skipped, nil
}

func parseGeoNamesRecord(record []string) (models.Place, bool) {
	if len(record) < geoNamesFields-1 {
		return models.Place{}, false
	}

	lat, err := strconv.ParseFloat(record[9], 64)
	if err != nil {
		return models.Place{}, false
	}
	lng, err := strconv.ParseFloat(record[10], 64)
	if err != nil {
		return models.Place{}, false
	}

	// accuracy is often blank
	accuracy := 0
	if len(record) >= geoNamesFields && record[11] != "" {
		accuracy, _ = strconv.Atoi(record[11])
	}

	return models.Place{
		CountryCode: record[0],
		PostalCode:  record[1],
		PlaceName:   record[2],
		AdminName1:  record[3],
		AdminCode1:  record[4],
		AdminName2:  record[5],
		AdminCode2:  record[6],
		AdminName3:  record[7],
		AdminCode3:  record[8],
		Latitude:    lat,
		Longitude:   lng,
		Accuracy:    accuracy,
	}, true
}

// GeoNamesStore implements Store over a GeoNames file held in memory
// Matching follows the SQL store: case-insensitive LIKE semantics
type GeoNamesStore struct {
	places []models.Place
}

// NewGeoNamesStore loads the whole file at path
func NewGeoNamesStore(path string) (*GeoNamesStore, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoNames file: %w", err)
	}
	defer file.Close()

	places, _, err := ReadGeoNames(file)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("GeoNames file %s has no usable rows", path)
	}

	return NewGeoNamesStoreFromPlaces(places), nil
}

// NewGeoNamesStoreFromPlaces builds a store from already parsed places
func NewGeoNamesStoreFromPlaces(places []models.Place) *GeoNamesStore {
	return &GeoNamesStore{places: places}
}

// Search scans every place; fine for the size of a country dump
func (s *GeoNamesStore) Search(_ context.Context, q geo.Query) ([]models.Place, error) {
	matches := []models.Place{}
	for _, p := range s.places {
		if q.Matches(p.PostalCode, p.PlaceName, p.AdminCode1, p.AdminName1) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// InBounds keeps the first place seen per group, then samples limit groups
func (s *GeoNamesStore) InBounds(_ context.Context, b geo.Bounds, limit int) ([]models.Place, error) {
	seen := make(map[models.GroupKey]struct{})
	candidates := []models.Place{}
	for _, p := range s.places {
		if !b.Contains(p.Latitude, p.Longitude) {
			continue
		}
		key := p.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, p)
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// Close is a no-op; all data lives in memory
func (s *GeoNamesStore) Close() error {
	return nil
}
