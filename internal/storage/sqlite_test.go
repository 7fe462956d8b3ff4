package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewatch/internal/config"
	"pricewatch/internal/dataset"
)

func sampleObservations() []dataset.Observation {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	return []dataset.Observation{
		{ASIN: "B001", Date: day(1), SettledPrice: decimal.RequireFromString("10.00"), Brand: "Acme", TertiaryCategory: "Lamps", ItemSubtype: "Desk", Group: "照明"},
		{ASIN: "B001", Date: day(3), SettledPrice: decimal.RequireFromString("9.005"), Flag3Day5Pct: true, TertiaryCategory: "Lamps"},
		{ASIN: "B002", Date: day(5), SettledPrice: decimal.RequireFromString("3.10"), Flag3Day5Pct: true, Flag5Day10Pct: true, Group: "Electrical"},
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prices.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	store := NewSQLiteStore(db, "", dataset.TableOptions{GroupAliases: map[string]string{"照明": dataset.GroupLighting}})
	defer store.Close()

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx), "schema creation is idempotent")

	n, err := store.InsertObservations(ctx, sampleObservations())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := store.CountObservations(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	obs, err := store.ListObservations(ctx)
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, "B001", obs[0].ASIN)
	assert.Equal(t, "2024-01-01", obs[0].Date.Format(time.DateOnly))
	assert.Equal(t, dataset.GroupLighting, obs[0].Group)
	assert.Equal(t, "Acme", obs[0].Brand)
	assert.Equal(t, "9.005", obs[1].SettledPrice.String())
	assert.True(t, obs[1].Flag3Day5Pct)
	assert.False(t, obs[1].Flag5Day10Pct)
	assert.Empty(t, obs[1].Brand)
	assert.True(t, obs[2].Flag5Day10Pct)
	assert.Equal(t, dataset.GroupElectrical, obs[2].Group)
}

func TestSQLiteSourceLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prices.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	store := NewSQLiteStore(db, "daily", dataset.TableOptions{})
	require.NoError(t, store.EnsureSchema(ctx))
	src := &SQLiteSource{Path: path, Table: "daily"}

	ds, err := dataset.Load(ctx, src)
	require.NoError(t, err, "an empty table loads as an empty dataset")
	assert.Zero(t, ds.Len())

	_, err = store.InsertObservations(ctx, sampleObservations())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ds, err = dataset.Load(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "sqlite:"+path, ds.Source)
	latest, ok := ds.MaxDate()
	require.True(t, ok)
	assert.Equal(t, "2024-01-05", latest.Format(time.DateOnly))
}

func TestSQLiteSourceMissingTable(t *testing.T) {
	src := &SQLiteSource{Path: filepath.Join(t.TempDir(), "empty.db")}
	_, err := dataset.Load(context.Background(), src)

	var loadErr *dataset.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, src.Name(), loadErr.Source)
}

func TestPostgresRequiresDSN(t *testing.T) {
	_, err := NewPool(context.Background(), config.DatabaseConfig{})
	assert.Error(t, err)

	var store *Store
	_, err = store.ListObservations(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	src := &PostgresSource{}
	assert.Equal(t, "postgres:"+DefaultTable, src.Name())
}
