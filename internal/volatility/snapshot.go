package volatility

import (
	"time"

	"pricewatch/internal/dataset"
)

// Latest returns the maximum date in obs and the rows dated on it, in source order.
// Empty input yields the zero time and no rows.
func Latest(obs []dataset.Observation) (time.Time, []dataset.Observation) {
	var latest time.Time
	for _, o := range obs {
		if o.Date.After(latest) {
			latest = o.Date
		}
	}
	if latest.IsZero() {
		return latest, nil
	}

	rows := make([]dataset.Observation, 0)
	for _, o := range obs {
		if o.Date.Equal(latest) {
			rows = append(rows, o)
		}
	}
	return latest, rows
}
