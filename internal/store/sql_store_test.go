package store

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/evyataryagoni/mashup/internal/geo"
	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/evyataryagoni/mashup/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a MySQL-dialect GORM connection over sqlmock
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return db, mock, sqlDB
}

func placeRows() *sqlmock.Rows {
	return sqlmock.NewRows(placeColumns).
		AddRow("US", "02138", "Cambridge", "Massachusetts", "MA", "Middlesex", "017", "", "", 42.377, -71.1256, 1).
		AddRow("US", "02139", "Cambridge", "Massachusetts", "MA", "Middlesex", "017", "", "", 42.3647, -71.1042, 1)
}

// TestSQLStore_Search_Forms tests the WHERE clause of each query form
func TestSQLStore_Search_Forms(t *testing.T) {
	tests := []struct {
		name  string
		q     string
		where string
		args  []driver.Value
	}{
		{
			name:  "postal code prefix",
			q:     "021",
			where: "postal_code LIKE ?",
			args:  []driver.Value{"021%"},
		},
		{
			name:  "place name prefix",
			q:     "Cambridge",
			where: "place_name LIKE ?",
			args:  []driver.Value{"Cambridge%"},
		},
		{
			name:  "place name with region code",
			q:     "Cambridge, MA",
			where: "place_name LIKE ? AND admin_code1 = ?",
			args:  []driver.Value{"%Cambridge%", "MA"},
		},
		{
			name:  "place name with region name",
			q:     "Cambridge, Massachusetts",
			where: "place_name LIKE ? AND admin_name1 = ?",
			args:  []driver.Value{"%Cambridge%", "Massachusetts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, sqlDB := setupMockDB(t)
			defer sqlDB.Close()

			store := NewSQLStore(db, nil)

			mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `places` WHERE " + tt.where)).
				WithArgs(tt.args...).
				WillReturnRows(placeRows())

			places, err := store.Search(context.Background(), geo.ParseQuery(tt.q))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(places) != 2 {
				t.Fatalf("expected 2 places, got %d", len(places))
			}
			if places[0].PostalCode != "02138" || places[0].AdminName2 != "Middlesex" {
				t.Errorf("unexpected first place: %+v", places[0])
			}
			if places[0].Latitude != 42.377 || places[0].Longitude != -71.1256 {
				t.Errorf("unexpected coordinates: %v,%v", places[0].Latitude, places[0].Longitude)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

// TestSQLStore_Search_PostgresCaseInsensitive tests that Postgres uses ILIKE
func TestSQLStore_Search_PostgresCaseInsensitive(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "places" WHERE place_name ILIKE $1`)).
		WithArgs("cambridge%").
		WillReturnRows(placeRows())

	places, err := NewSQLStore(db, nil).Search(context.Background(), geo.ParseQuery("cambridge"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 2 {
		t.Errorf("expected 2 places, got %d", len(places))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestSQLStore_Search_NoRows tests that an empty result is an empty slice, not nil
func TestSQLStore_Search_NoRows(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := NewSQLStore(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `places` WHERE postal_code LIKE ?")).
		WithArgs("99999%").
		WillReturnRows(sqlmock.NewRows(placeColumns))

	places, err := store.Search(context.Background(), geo.ParseQuery("99999"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if places == nil || len(places) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", places)
	}
}

// TestSQLStore_Search_DatabaseError tests error propagation and metrics
func TestSQLStore_Search_DatabaseError(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	store := NewSQLStore(db, m)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `places`")).
		WillReturnError(sql.ErrConnDone)

	places, err := store.Search(context.Background(), geo.ParseQuery("Cambridge"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("expected wrapped sql.ErrConnDone, got %v", err)
	}
	if places != nil {
		t.Error("expected nil places on error")
	}

	if got := testutil.ToFloat64(m.DatastoreQueriesTotal.WithLabelValues("mysql", "search", "error")); got != 1 {
		t.Errorf("expected 1 failed query recorded, got %v", got)
	}
}

// TestSQLStore_InBounds tests the viewport query for both longitude forms
func TestSQLStore_InBounds(t *testing.T) {
	tests := []struct {
		name   string
		bounds geo.Bounds
		lng    string
	}{
		{
			name:   "within the antimeridian",
			bounds: geo.Bounds{SW: geo.Point{Lat: -10, Lng: -10}, NE: geo.Point{Lat: 10, Lng: 10}},
			lng:    "(? <= longitude AND longitude <= ?)",
		},
		{
			name:   "crossing the antimeridian",
			bounds: geo.Bounds{SW: geo.Point{Lat: -10, Lng: 170}, NE: geo.Point{Lat: 10, Lng: -170}},
			lng:    "(? <= longitude OR longitude <= ?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, sqlDB := setupMockDB(t)
			defer sqlDB.Close()

			m := metrics.NewWithRegistry(prometheus.NewRegistry())
			store := NewSQLStore(db, m)

			query := viewportSQL("mysql", tt.bounds.CrossesAntimeridian())
			if !strings.Contains(query, tt.lng) {
				t.Fatalf("expected longitude filter %q in %q", tt.lng, query)
			}

			mock.ExpectQuery(regexp.QuoteMeta(query)).
				WithArgs(tt.bounds.SW.Lat, tt.bounds.NE.Lat, tt.bounds.SW.Lng, tt.bounds.NE.Lng, ViewportLimit).
				WillReturnRows(placeRows())

			places, err := store.InBounds(context.Background(), tt.bounds, ViewportLimit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(places) != 2 {
				t.Errorf("expected 2 places, got %d", len(places))
			}
			if places[1].PostalCode != "02139" {
				t.Errorf("expected second place 02139, got %s", places[1].PostalCode)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
			if got := testutil.ToFloat64(m.DatastoreQueriesTotal.WithLabelValues("mysql", "in_bounds", "success")); got != 1 {
				t.Errorf("expected 1 successful query recorded, got %v", got)
			}
		})
	}
}

// TestSQLStore_InBounds_DatabaseError tests error propagation
func TestSQLStore_InBounds_DatabaseError(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := NewSQLStore(db, nil)

	mock.ExpectQuery("SELECT .* FROM places").WillReturnError(sql.ErrConnDone)

	b := geo.Bounds{SW: geo.Point{Lat: -10, Lng: -10}, NE: geo.Point{Lat: 10, Lng: 10}}
	if _, err := store.InBounds(context.Background(), b, ViewportLimit); !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("expected wrapped sql.ErrConnDone, got %v", err)
	}
}

// TestViewportSQL_Dialects tests grouping and random ordering per dialect
func TestViewportSQL_Dialects(t *testing.T) {
	tests := []struct {
		dialect  string
		contains []string
	}{
		{
			dialect: "sqlite",
			contains: []string{
				"SELECT * FROM places WHERE ? <= latitude AND latitude <= ?",
				"GROUP BY country_code, place_name, admin_code1",
				"ORDER BY RANDOM() LIMIT ?",
			},
		},
		{
			dialect: "mysql",
			contains: []string{
				"ANY_VALUE(postal_code) AS postal_code",
				"ANY_VALUE(longitude) AS longitude",
				"GROUP BY country_code, place_name, admin_code1",
				"ORDER BY RAND() LIMIT ?",
			},
		},
		{
			dialect: "postgres",
			contains: []string{
				"SELECT DISTINCT ON (country_code, place_name, admin_code1) * FROM places",
				"ORDER BY RANDOM() LIMIT ?",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			query := viewportSQL(tt.dialect, false)
			for _, want := range tt.contains {
				if !strings.Contains(query, want) {
					t.Errorf("expected %q in %q", want, query)
				}
			}
			if got := strings.Count(query, "?"); got != 5 {
				t.Errorf("expected 5 placeholders, got %d", got)
			}
		})
	}

	// Group columns are never wrapped in an aggregate
	if strings.Contains(viewportSQL("mysql", false), "ANY_VALUE(place_name)") {
		t.Error("group column place_name must not be wrapped in ANY_VALUE")
	}
}

// TestOpen_UnsupportedDriver tests driver validation
func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", nil)
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}

// TestOpen_LogsQueryErrors tests that GORM errors reach the log at the default level
func TestOpen_LogsQueryErrors(t *testing.T) {
	var buf bytes.Buffer
	db, err := Open("sqlite", ":memory:", logger.New(logger.Config{Level: "info", Output: &buf}))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	var count int
	if err := db.Raw("SELECT COUNT(*) FROM no_such_table").Scan(&count).Error; err == nil {
		t.Fatal("expected error querying a missing table")
	}

	out := buf.String()
	if !strings.Contains(out, "no_such_table") {
		t.Fatalf("expected query error in log, got %q", out)
	}
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"component":"gorm"`) {
		t.Errorf("expected warn-level gorm entry, got %q", out)
	}
}

// TestSQLStore_Close tests closing the underlying connection
func TestSQLStore_Close(t *testing.T) {
	db, mock, _ := setupMockDB(t)
	mock.ExpectClose()

	store := NewSQLStore(db, nil)
	if err := store.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
