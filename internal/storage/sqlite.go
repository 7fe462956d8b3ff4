package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pricewatch/internal/dataset"
)

const (
	// Prices are kept as TEXT so decimals round-trip exactly.
	createObservationsSQLiteSQL = `CREATE TABLE IF NOT EXISTS %[1]s (
        id                INTEGER PRIMARY KEY AUTOINCREMENT,
        asin              TEXT    NOT NULL,
        obs_date          TEXT    NOT NULL,
        settled_price     TEXT    NOT NULL,
        brand             TEXT,
        tertiary_category TEXT,
        item_subtype      TEXT,
        product_group     TEXT,
        flag_3day_5pct    INTEGER NOT NULL DEFAULT 0,
        flag_5day_10pct   INTEGER NOT NULL DEFAULT 0
    );`

	createObservationsIndexSQLiteSQL = `CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (asin, obs_date);`

	listObservationsSQLiteSQL = `SELECT
        asin,
        obs_date,
        settled_price,
        COALESCE(brand, ''),
        COALESCE(tertiary_category, ''),
        COALESCE(item_subtype, ''),
        COALESCE(product_group, ''),
        flag_3day_5pct,
        flag_5day_10pct
    FROM %s
    ORDER BY id;`

	insertObservationSQLiteSQL = `INSERT INTO %s (
        asin,
        obs_date,
        settled_price,
        brand,
        tertiary_category,
        item_subtype,
        product_group,
        flag_3day_5pct,
        flag_5day_10pct
    ) VALUES (?,?,?,?,?,?,?,?,?);`

	countObservationsSQLiteSQL = `SELECT COUNT(*) FROM %s;`
)

// ErrSQLiteNotConfigured indicates the SQLite handle was not opened.
var ErrSQLiteNotConfigured = errors.New("storage: sqlite not configured")

// SQLiteStore keeps observations in a local SQLite file.
type SQLiteStore struct {
	db    *sql.DB
	table string
	opts  dataset.TableOptions
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sql.DB, table string, opts dataset.TableOptions) *SQLiteStore {
	if table == "" {
		table = DefaultTable
	}
	return &SQLiteStore{db: db, table: table, opts: opts}
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrSQLiteNotConfigured
	}
	return s.db, nil
}

func (s *SQLiteStore) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

// EnsureSchema creates the observation table and its lookup index.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(createObservationsSQLiteSQL, s.ident())); err != nil {
		return fmt.Errorf("create observations table: %w", err)
	}
	index := pgx.Identifier{s.table + "_asin_date_idx"}.Sanitize()
	if _, err := db.ExecContext(ctx, fmt.Sprintf(createObservationsIndexSQLiteSQL, s.ident(), index)); err != nil {
		return fmt.Errorf("create observations index: %w", err)
	}
	return nil
}

// ListObservations returns every observation in insertion order.
func (s *SQLiteStore) ListObservations(ctx context.Context) ([]dataset.Observation, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(listObservationsSQLiteSQL, s.ident()))
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	defer rows.Close()

	obs := make([]dataset.Observation, 0)
	for rows.Next() {
		o, scanErr := scanObservation(rows, s.opts)
		if scanErr != nil {
			return nil, fmt.Errorf("row %d: %w", len(obs)+1, scanErr)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return obs, nil
}

// InsertObservations appends obs in one transaction.
func (s *SQLiteStore) InsertObservations(ctx context.Context, obs []dataset.Observation) (int, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}
	if len(obs) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(insertObservationSQLiteSQL, s.ident()))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range obs {
		if _, err := stmt.ExecContext(ctx, observationArgs(o, dateText(o.Date))...); err != nil {
			return 0, fmt.Errorf("insert observation %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(obs), nil
}

// CountObservations counts stored observations.
func (s *SQLiteStore) CountObservations(ctx context.Context) (int64, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}
	var count int64
	if err := db.QueryRowContext(ctx, fmt.Sprintf(countObservationsSQLiteSQL, s.ident())).Scan(&count); err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return count, nil
}

var _ ObservationStore = (*SQLiteStore)(nil)
