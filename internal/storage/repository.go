package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricewatch/internal/dataset"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

// DefaultTable holds daily price observations when database.table is unset.
const DefaultTable = "price_observations"

const (
	createObservationsPGSQL = `CREATE TABLE IF NOT EXISTS %[1]s (
        id                BIGSERIAL PRIMARY KEY,
        asin              TEXT    NOT NULL,
        obs_date          DATE    NOT NULL,
        settled_price     NUMERIC NOT NULL CHECK (settled_price > 0),
        brand             TEXT,
        tertiary_category TEXT,
        item_subtype      TEXT,
        product_group     TEXT,
        flag_3day_5pct    BOOLEAN NOT NULL DEFAULT FALSE,
        flag_5day_10pct   BOOLEAN NOT NULL DEFAULT FALSE
    );`

	createObservationsIndexPGSQL = `CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (asin, obs_date);`

	listObservationsPGSQL = `SELECT
        asin,
        to_char(obs_date, 'YYYY-MM-DD'),
        settled_price::text,
        COALESCE(brand, ''),
        COALESCE(tertiary_category, ''),
        COALESCE(item_subtype, ''),
        COALESCE(product_group, ''),
        flag_3day_5pct,
        flag_5day_10pct
    FROM %s
    ORDER BY id;`

	insertObservationPGSQL = `INSERT INTO %s (
        asin,
        obs_date,
        settled_price,
        brand,
        tertiary_category,
        item_subtype,
        product_group,
        flag_3day_5pct,
        flag_5day_10pct
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
    );`

	countObservationsPGSQL = `SELECT COUNT(*) FROM %s;`
)

// ObservationStore reads and imports daily price observations.
type ObservationStore interface {
	EnsureSchema(ctx context.Context) error
	ListObservations(ctx context.Context) ([]dataset.Observation, error)
	InsertObservations(ctx context.Context, obs []dataset.Observation) (int, error)
	CountObservations(ctx context.Context) (int64, error)
}

// Store keeps observations in PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	table string
	opts  dataset.TableOptions
}

// NewStore wires a pgx pool into a Store for the given table.
func NewStore(pool *pgxpool.Pool, table string, opts dataset.TableOptions) *Store {
	if table == "" {
		table = DefaultTable
	}
	return &Store{pool: pool, table: table, opts: opts}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

func (s *Store) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

// EnsureSchema creates the observation table and its lookup index.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(createObservationsPGSQL, s.ident())); err != nil {
		return fmt.Errorf("create observations table: %w", err)
	}
	index := pgx.Identifier{s.table + "_asin_date_idx"}.Sanitize()
	if _, err := pool.Exec(ctx, fmt.Sprintf(createObservationsIndexPGSQL, s.ident(), index)); err != nil {
		return fmt.Errorf("create observations index: %w", err)
	}
	return nil
}

// ListObservations returns every observation in insertion order.
func (s *Store) ListObservations(ctx context.Context) ([]dataset.Observation, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, fmt.Sprintf(listObservationsPGSQL, s.ident()))
	if queryErr != nil {
		return nil, fmt.Errorf("list observations: %w", queryErr)
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
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return obs, nil
}

// InsertObservations appends obs in one transaction.
func (s *Store) InsertObservations(ctx context.Context, obs []dataset.Observation) (int, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	if len(obs) == 0 {
		return 0, nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	insertSQL := fmt.Sprintf(insertObservationPGSQL, s.ident())
	batch := &pgx.Batch{}
	for _, o := range obs {
		batch.Queue(insertSQL, observationArgs(o, o.Date)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert observations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(obs), nil
}

// CountObservations counts stored observations.
func (s *Store) CountObservations(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, fmt.Sprintf(countObservationsPGSQL, s.ident())).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count observations: %w", scanErr)
	}
	return count, nil
}

// rowScanner is satisfied by pgx.Rows and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanObservation(row rowScanner, opts dataset.TableOptions) (dataset.Observation, error) {
	var (
		asin     string
		dateStr  string
		priceStr string
		brand    string
		category string
		subtype  string
		group    string
		flag3    bool
		flag5    bool
	)

	if err := row.Scan(
		&asin,
		&dateStr,
		&priceStr,
		&brand,
		&category,
		&subtype,
		&group,
		&flag3,
		&flag5,
	); err != nil {
		return dataset.Observation{}, err
	}

	date, err := dataset.ParseDate(dateStr)
	if err != nil {
		return dataset.Observation{}, err
	}
	price, err := dataset.ParsePrice(priceStr)
	if err != nil {
		return dataset.Observation{}, err
	}

	return dataset.Observation{
		ASIN:             asin,
		Date:             date,
		SettledPrice:     price,
		Brand:            brand,
		TertiaryCategory: category,
		ItemSubtype:      subtype,
		Group:            opts.NormalizeGroup(group),
		Flag3Day5Pct:     flag3,
		Flag5Day10Pct:    flag5,
	}, nil
}

// observationArgs orders insert parameters; date is passed in the driver's preferred form.
func observationArgs(o dataset.Observation, date any) []any {
	return []any{
		o.ASIN,
		date,
		o.SettledPrice.String(),
		nullable(o.Brand),
		nullable(o.TertiaryCategory),
		nullable(o.ItemSubtype),
		nullable(o.Group),
		o.Flag3Day5Pct,
		o.Flag5Day10Pct,
	}
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func dateText(t time.Time) string {
	return t.Format(time.DateOnly)
}

var _ ObservationStore = (*Store)(nil)
