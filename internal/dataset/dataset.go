package dataset

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Group values recognised by the report filters.
const (
	GroupLighting   = "Lighting"
	GroupElectrical = "Electrical"
)

// Observation is one daily price row for a product.
type Observation struct {
	// Row is the zero-based position in the source and breaks ties between rows sharing a date.
	Row              int
	ASIN             string
	Date             time.Time
	SettledPrice     decimal.Decimal
	Brand            string
	TertiaryCategory string
	ItemSubtype      string
	Group            string
	Flag3Day5Pct     bool
	Flag5Day10Pct    bool
}

// Dataset is an immutable set of observations produced by a single load.
type Dataset struct {
	ID       string
	Source   string
	LoadedAt time.Time

	observations []Observation
	maxDate      time.Time
}

// New copies obs into a fresh Dataset, normalising dates and assigning Row in input order.
func New(source string, obs []Observation) *Dataset {
	rows := make([]Observation, len(obs))
	var maxDate time.Time
	for i, o := range obs {
		o.Row = i
		o.Date = Day(o.Date)
		if o.Date.After(maxDate) {
			maxDate = o.Date
		}
		rows[i] = o
	}

	return &Dataset{
		ID:           uuid.NewString(),
		Source:       source,
		LoadedAt:     time.Now().UTC(),
		observations: rows,
		maxDate:      maxDate,
	}
}

// Observations returns the rows in source order. Callers must not modify the slice.
func (d *Dataset) Observations() []Observation {
	if d == nil {
		return nil
	}
	return d.observations
}

// Len reports the number of observations.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.observations)
}

// MaxDate returns the latest observation date, false when the dataset is empty.
func (d *Dataset) MaxDate() (time.Time, bool) {
	if d.Len() == 0 {
		return time.Time{}, false
	}
	return d.maxDate, true
}

// History returns every observation of asin ordered by date, then source row.
func (d *Dataset) History(asin string) []Observation {
	var out []Observation
	for _, o := range d.Observations() {
		if o.ASIN == asin {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
