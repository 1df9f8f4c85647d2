package main

import (
	"flag"
	"os"
	"time"

	"github.com/evyataryagoni/mashup/internal/config"
	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/evyataryagoni/mashup/internal/models"
	"github.com/evyataryagoni/mashup/internal/store"
)

// This tool seeds the places table from a GeoNames postal code dump
// Usage: go run ./cmd/import-places -file US.txt
func main() {
	appConfig := config.Load()

	file := flag.String("file", "US.txt", "GeoNames postal code file (tab-separated)")
	driver := flag.String("driver", appConfig.DatabaseDriver, "database driver: sqlite, mysql or postgres")
	dsn := flag.String("dsn", appConfig.DatabaseDSN, "database DSN, or a file path for sqlite")
	batchSize := flag.Int("batch", 1000, "rows per INSERT")
	flag.Parse()

	log := logger.New(logger.Config{Level: appConfig.LogLevel, Pretty: appConfig.LogPretty}).
		WithComponent("import")

	start := time.Now()
	log.Info().Str("file", *file).Msg("Loading places...")

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to open GeoNames file")
	}
	defer f.Close()

	places, skipped, err := store.ReadGeoNames(f)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse GeoNames file")
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Skipped malformed rows")
	}
	if len(places) == 0 {
		log.Fatal().Str("file", *file).Msg("No places found")
	}

	db, err := store.Open(*driver, *dsn, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", *driver).Msg("Failed to open places database")
	}

	if err := db.AutoMigrate(&models.Place{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate places table")
	}

	if err := db.CreateInBatches(places, *batchSize).Error; err != nil {
		log.Fatal().Err(err).Msg("Failed to insert places")
	}

	log.Info().
		Int("places", len(places)).
		Str("driver", *driver).
		Dur("duration", time.Since(start)).
		Msg("Places imported; start the server with the same DATABASE_DRIVER and DATABASE_DSN")
}
