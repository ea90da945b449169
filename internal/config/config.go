// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Backend selects the persistence implementation.
type Backend string

const (
	BackendBigQuery Backend = "bigquery"
	BackendPostgres Backend = "postgres"
)

// Config is everything the binaries need to start.
type Config struct {
	Port string

	// StoreBackend is "bigquery" or "postgres".
	StoreBackend Backend

	// BigQuery settings, required when StoreBackend is bigquery.
	GCPProject string
	BQDataset  string

	// DatabaseURL is required when StoreBackend is postgres.
	DatabaseURL string

	// GCSBucket enables async imports when set. Empty disables them.
	GCSBucket string

	// WorkerCount is the number of concurrent import workers.
	WorkerCount int
}

// Load reads configuration from the environment. A .env file is loaded first
// if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: Backend(getEnv("STORE_BACKEND", string(BackendBigQuery))),
		GCPProject:   getEnv("GCP_PROJECT", ""),
		BQDataset:    getEnv("BQ_DATASET", "pennyflow"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		GCSBucket:    getEnv("GCS_BUCKET", ""),
		WorkerCount:  5,
	}

	switch cfg.StoreBackend {
	case BackendBigQuery:
		if cfg.GCPProject == "" {
			return Config{}, fmt.Errorf("Load: GCP_PROJECT is required for the bigquery backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("Load: DATABASE_URL is required for the postgres backend")
		}
	default:
		return Config{}, fmt.Errorf("Load: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
