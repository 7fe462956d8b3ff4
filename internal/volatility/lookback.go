package volatility

import (
	"time"

	"github.com/shopspring/decimal"

	"pricewatch/internal/dataset"
)

// Lookback offsets in calendar days. A 3-day window ending on D spans D-2..D,
// so the comparison price for it sits 2 days back; likewise 4 for 5 days.
const (
	Lookback3Day = 2
	Lookback5Day = 4
)

type dayKey int64

func keyOf(t time.Time) dayKey {
	return dayKey(dataset.Day(t).Unix() / 86400)
}

type dayEntry struct {
	obs   dataset.Observation
	flag3 bool
	flag5 bool
}

// Resolver answers "what was this ASIN's price exactly k days before D" over the full history.
type Resolver struct {
	index map[string]map[dayKey]*dayEntry
}

// NewResolver indexes every observation by ASIN and date. When a date repeats
// for an ASIN the row later in the source wins; flags OR across all of them.
func NewResolver(obs []dataset.Observation) *Resolver {
	index := make(map[string]map[dayKey]*dayEntry)
	for _, o := range obs {
		byDay, ok := index[o.ASIN]
		if !ok {
			byDay = make(map[dayKey]*dayEntry)
			index[o.ASIN] = byDay
		}
		k := keyOf(o.Date)
		entry, ok := byDay[k]
		if !ok {
			entry = &dayEntry{obs: o}
			byDay[k] = entry
		} else if later(o, entry.obs) {
			entry.obs = o
		}
		entry.flag3 = entry.flag3 || o.Flag3Day5Pct
		entry.flag5 = entry.flag5 || o.Flag5Day10Pct
	}
	return &Resolver{index: index}
}

// Lookup returns the observation of asin dated exactly ref minus days.
func (r *Resolver) Lookup(asin string, ref time.Time, days int) (dataset.Observation, bool) {
	byDay, ok := r.index[asin]
	if !ok {
		return dataset.Observation{}, false
	}
	entry, ok := byDay[keyOf(ref.AddDate(0, 0, -days))]
	if !ok {
		return dataset.Observation{}, false
	}
	return entry.obs, true
}

// PriceAt returns the settled price of asin exactly days before ref.
func (r *Resolver) PriceAt(asin string, ref time.Time, days int) (decimal.Decimal, bool) {
	o, ok := r.Lookup(asin, ref, days)
	if !ok {
		return decimal.Decimal{}, false
	}
	return o.SettledPrice, true
}

// FlagsBefore reports whether asin carried either flag on any of the days
// ref-days..ref-1. The reference day itself is excluded.
func (r *Resolver) FlagsBefore(asin string, ref time.Time, days int) (flag3, flag5 bool) {
	byDay, ok := r.index[asin]
	if !ok {
		return false, false
	}
	for d := 1; d <= days; d++ {
		entry, ok := byDay[keyOf(ref.AddDate(0, 0, -d))]
		if !ok {
			continue
		}
		flag3 = flag3 || entry.flag3
		flag5 = flag5 || entry.flag5
	}
	return flag3, flag5
}

// later orders rows chronologically, then by source position.
func later(a, b dataset.Observation) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.Row > b.Row
}
