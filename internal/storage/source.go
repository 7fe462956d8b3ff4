package storage

import (
	"context"

	"pricewatch/internal/config"
	"pricewatch/internal/dataset"
)

// PostgresSource loads observations from a PostgreSQL table.
type PostgresSource struct {
	Config  config.DatabaseConfig
	Options dataset.TableOptions
}

// Name implements dataset.Source.
func (s *PostgresSource) Name() string {
	return "postgres:" + tableOrDefault(s.Config.Table)
}

// Observations implements dataset.Source.
func (s *PostgresSource) Observations(ctx context.Context) ([]dataset.Observation, error) {
	pool, err := NewPool(ctx, s.Config)
	if err != nil {
		return nil, err
	}
	store := NewStore(pool, s.Config.Table, s.Options)
	defer store.Close()

	obs, err := store.ListObservations(ctx)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, dataset.ErrNoRows
	}
	return obs, nil
}

// SQLiteSource loads observations from a SQLite file.
type SQLiteSource struct {
	Path    string
	Table   string
	Options dataset.TableOptions
}

// Name implements dataset.Source.
func (s *SQLiteSource) Name() string {
	return "sqlite:" + s.Path
}

// Observations implements dataset.Source.
func (s *SQLiteSource) Observations(ctx context.Context) ([]dataset.Observation, error) {
	db, err := OpenSQLite(ctx, s.Path)
	if err != nil {
		return nil, err
	}
	store := NewSQLiteStore(db, s.Table, s.Options)
	defer store.Close()

	obs, err := store.ListObservations(ctx)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, dataset.ErrNoRows
	}
	return obs, nil
}

func tableOrDefault(table string) string {
	if table == "" {
		return DefaultTable
	}
	return table
}

var (
	_ dataset.Source = (*PostgresSource)(nil)
	_ dataset.Source = (*SQLiteSource)(nil)
)
