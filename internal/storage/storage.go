package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/babyscan/babyscan/internal/storage/postgres"
	"github.com/babyscan/babyscan/internal/storage/sqlite"
	"github.com/babyscan/babyscan/internal/types"
)

// Storage defines the interface for baby and measurement storage backends.
//
// Getters return an error wrapping types.ErrNotFound for missing records.
type Storage interface {
	// Babies
	CreateBaby(ctx context.Context, baby *types.Baby) error
	GetBaby(ctx context.Context, id string) (*types.Baby, error)
	// ListBabies returns all babies, newest first.
	ListBabies(ctx context.Context) ([]*types.Baby, error)
	UpdateBaby(ctx context.Context, id string, updates map[string]interface{}) error
	// DeleteBaby removes the baby and all of its measurements.
	DeleteBaby(ctx context.Context, id string) error

	// Measurements
	CreateMeasurement(ctx context.Context, m *types.Measurement) error
	GetMeasurement(ctx context.Context, id string) (*types.Measurement, error)
	// ListMeasurements returns a baby's measurements ordered by measurement
	// date, most recent first (see ListMeasurementsOrder).
	ListMeasurements(ctx context.Context, babyID string) ([]*types.Measurement, error)
	UpdateMeasurement(ctx context.Context, id string, updates map[string]interface{}) error
	DeleteMeasurement(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}

// ListMeasurementsOrder documents the ordering ListMeasurements guarantees.
const ListMeasurementsOrder = "measurement_date DESC"

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path, ":memory:", or a postgres:// URL.
	// Default: ".babyscan/babyscan.db"
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: DataDirName + "/babyscan.db",
	}
}

// IsPostgresURL reports whether path names a PostgreSQL server rather than a file.
func IsPostgresURL(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

// NewStorage opens the backend selected by cfg.Path.
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}

	if IsPostgresURL(cfg.Path) {
		pgCfg, err := postgres.ConfigFromURL(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres URL: %w", err)
		}
		return postgres.New(ctx, pgCfg)
	}

	return sqlite.New(cfg.Path)
}
