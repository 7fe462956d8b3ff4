package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pricewatch/internal/config"
	"pricewatch/internal/dataset"
	"pricewatch/internal/storage"
)

// Import copies the configured file dataset into a database table.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	switch a.Config.Dataset.ResolveSource() {
	case config.SourceXLSX, config.SourceCSV:
	default:
		return fmt.Errorf("import reads xlsx or csv files, got source %q", a.Config.Dataset.ResolveSource())
	}
	if opts.To == "" {
		return errors.New("--to must name a sqlite file or \"postgres\"")
	}

	src, err := NewSource(a.Config)
	if err != nil {
		return err
	}
	ds, err := dataset.Load(ctx, src)
	if err != nil {
		return loadFailed(err)
	}
	if ds.Len() == 0 {
		a.Logger.Warn().Str("source", ds.Source).Msg("dataset is empty; nothing to import")
		return nil
	}

	if opts.DryRun {
		a.Logger.Warn().Int("rows", ds.Len()).Msg("import dry-run: nothing written")
		fmt.Fprintf(a.Out, "%d rows would be imported from %s\n", ds.Len(), ds.Source)
		return nil
	}

	store, closeStore, err := a.openStore(ctx, opts.To)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	n, err := store.InsertObservations(ctx, ds.Observations())
	if err != nil {
		return err
	}
	total, err := store.CountObservations(ctx)
	if err != nil {
		return err
	}

	a.Logger.Info().Int("imported", n).Int64("total", total).Str("target", opts.To).Msg("import finished")
	fmt.Fprintf(a.Out, "imported %d rows into %s (%d total)\n", n, opts.To, total)
	return nil
}

func (a *App) openStore(ctx context.Context, target string) (storage.ObservationStore, func(), error) {
	opts := dataset.TableOptions{GroupAliases: a.Config.Dataset.GroupAliases}

	if strings.EqualFold(target, config.SourcePostgres) {
		if a.Config.Database.DSN == "" {
			return nil, nil, errors.New("database.dsn not configured; cannot import into postgres")
		}
		pool, err := storage.NewPool(ctx, a.Config.Database)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewStore(pool, a.Config.Database.Table, opts)
		return store, store.Close, nil
	}

	db, err := storage.OpenSQLite(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewSQLiteStore(db, a.Config.Database.Table, opts)
	return store, func() { _ = store.Close() }, nil
}
