package volatility

import (
	"errors"
	"time"

	"pricewatch/internal/dataset"
)

var (
	// ErrEmptySnapshot means the dataset has no rows at its latest date. Informational.
	ErrEmptySnapshot = errors.New("dataset is empty")
	// ErrNoQualifyingProducts means the filters left no ASIN. Informational.
	ErrNoQualifyingProducts = errors.New("no volatile ASINs match the current filters")
)

// Report is the result of one query.
type Report struct {
	LatestDate time.Time
	Criteria   Criteria
	Rows       []Summary
}

// Count is the number of qualifying ASINs.
func (r *Report) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Engine runs snapshot selection, filtering, lookback and summary building.
// It keeps no state between runs.
type Engine struct {
	builder Builder
}

// NewEngine constructs an Engine using b to render rows.
func NewEngine(b Builder) *Engine {
	return &Engine{builder: b}
}

// Run executes one full query pass against ds.
func (e *Engine) Run(ds *dataset.Dataset, c Criteria) (*Report, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	obs := ds.Observations()
	latest, snapshot := Latest(obs)
	if len(snapshot) == 0 {
		return nil, ErrEmptySnapshot
	}

	filtered := Apply(snapshot, c)
	if len(filtered) == 0 {
		return &Report{LatestDate: latest, Criteria: c}, ErrNoQualifyingProducts
	}

	rows := e.builder.Build(latest, filtered, NewResolver(obs))
	return &Report{LatestDate: latest, Criteria: c, Rows: rows}, nil
}

// Options returns the filter choices available for c against the latest snapshot of ds.
func (e *Engine) Options(ds *dataset.Dataset, c Criteria) (time.Time, OptionSet) {
	c = c.Normalize()
	latest, snapshot := Latest(ds.Observations())
	return latest, Options(snapshot, c)
}
