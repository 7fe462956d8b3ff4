package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"pricewatch/internal/alerting"
	"pricewatch/internal/dataset"
	"pricewatch/internal/scheduler"
	"pricewatch/internal/volatility"
)

// Options tune caching and the post-reload digest.
type Options struct {
	CacheTTL      time.Duration
	AlertsEnabled bool
	AlertCriteria volatility.Criteria
	MaxAlertRows  int
	UpdateTime    string
}

type cachedReport struct {
	report *volatility.Report
	err    error
}

// Service owns the current dataset and answers queries against it.
type Service struct {
	source   dataset.Source
	holder   dataset.Holder
	engine   *volatility.Engine
	cache    *cache.Cache
	notifier alerting.Notifier
	opts     Options
	logger   zerolog.Logger
}

// New constructs the report service. notifier may be nil.
func New(src dataset.Source, engine *volatility.Engine, notifier alerting.Notifier, opts Options, logger zerolog.Logger) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Service{
		source:   src,
		engine:   engine,
		cache:    cache.New(ttl, 10*time.Minute),
		notifier: notifier,
		opts:     opts,
		logger:   logger.With().Str("component", "service").Logger(),
	}
}

// Reload reads the source and swaps in the new dataset. On failure the previous dataset stays active.
func (s *Service) Reload(ctx context.Context) (*dataset.Dataset, error) {
	started := time.Now()
	ds, err := dataset.Load(ctx, s.source)
	if err != nil {
		return nil, err
	}

	prev := s.holder.Store(ds)
	s.cache.Flush()

	evt := s.logger.Info().
		Str("source", ds.Source).
		Str("dataset_id", ds.ID).
		Int("rows", ds.Len()).
		Dur("took", time.Since(started))
	if latest, ok := ds.MaxDate(); ok {
		evt = evt.Time("latest_date", latest)
	}
	if prev != nil {
		evt = evt.Str("replaced_id", prev.ID)
	}
	evt.Msg("dataset loaded")
	return ds, nil
}

// Dataset returns the active dataset, loading it on first use.
func (s *Service) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	if ds := s.holder.Load(); ds != nil {
		return ds, nil
	}
	return s.Reload(ctx)
}

// Query runs the report for c against the active dataset.
// ErrEmptySnapshot and ErrNoQualifyingProducts are returned as informational states.
func (s *Service) Query(ctx context.Context, c volatility.Criteria) (*volatility.Report, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	c = c.Normalize()
	key := ds.ID + "|" + c.Key()
	if hit, ok := s.cache.Get(key); ok {
		entry := hit.(cachedReport)
		return entry.report, entry.err
	}

	report, err := s.engine.Run(ds, c)
	if err == nil || isInformational(err) {
		s.cache.SetDefault(key, cachedReport{report: report, err: err})
	}
	s.logger.Debug().Str("criteria", c.String()).Int("rows", report.Count()).AnErr("state", err).Msg("query evaluated")
	return report, err
}

// Options lists the filter choices available for c.
func (s *Service) Options(ctx context.Context, c volatility.Criteria) (time.Time, volatility.OptionSet, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return time.Time{}, volatility.OptionSet{}, err
	}
	latest, set := s.engine.Options(ds, c)
	return latest, set, nil
}

// History returns every observation of asin in date order.
func (s *Service) History(ctx context.Context, asin string) ([]dataset.Observation, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.History(asin), nil
}

// Run reloads on every scheduler tick until ctx is cancelled.
func (s *Service) Run(ctx context.Context, sched *scheduler.Scheduler) error {
	if sched == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return sched.Run(ctx, s.Tick)
}

// Tick reloads the dataset and, when alerts are enabled, pushes the digest.
func (s *Service) Tick(ctx context.Context, at time.Time) error {
	if _, err := s.Reload(ctx); err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}
	if !s.opts.AlertsEnabled || s.notifier == nil {
		return nil
	}
	_, err := s.Notify(ctx)
	return err
}

// Notify sends the digest for the configured alert criteria. It reports whether a message went out.
func (s *Service) Notify(ctx context.Context) (bool, error) {
	if s.notifier == nil {
		return false, fmt.Errorf("no notifier configured")
	}
	report, err := s.Query(ctx, s.opts.AlertCriteria)
	switch {
	case errors.Is(err, volatility.ErrNoQualifyingProducts), errors.Is(err, volatility.ErrEmptySnapshot):
		s.logger.Info().Str("state", err.Error()).Msg("digest skipped")
		return false, nil
	case err != nil:
		return false, err
	}

	note := alerting.NewNotification(report, s.opts.UpdateTime, s.opts.MaxAlertRows)
	if err := s.notifier.Notify(ctx, note); err != nil {
		return false, fmt.Errorf("dispatch digest: %w", err)
	}
	return true, nil
}

func isInformational(err error) bool {
	return errors.Is(err, volatility.ErrEmptySnapshot) || errors.Is(err, volatility.ErrNoQualifyingProducts)
}
