package volatility

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatestPartitionsObservations(t *testing.T) {
	ds := buildDataset(t,
		obsRow{asin: "A", date: "2024-01-04", price: "1.00"},
		obsRow{asin: "B", date: "2024-01-06", price: "2.00"},
		obsRow{asin: "A", date: "2024-01-06", price: "1.10"},
		obsRow{asin: "C", date: "2024-01-05", price: "3.00"},
	)
	obs := ds.Observations()

	latest, snapshot := Latest(obs)
	assert.Equal(t, "2024-01-06", latest.Format("2006-01-02"))
	assert.Equal(t, []string{"B", "A"}, asins(snapshot))

	inSnapshot := make(map[int]bool)
	for _, o := range snapshot {
		assert.True(t, o.Date.Equal(latest))
		assert.False(t, inSnapshot[o.Row], "row %d duplicated", o.Row)
		inSnapshot[o.Row] = true
	}

	var union []int
	for _, o := range obs {
		if !o.Date.Equal(latest) {
			union = append(union, o.Row)
		}
	}
	for row := range inSnapshot {
		union = append(union, row)
	}
	sort.Ints(union)
	assert.Equal(t, []int{0, 1, 2, 3}, union)
}

func TestLatestEmpty(t *testing.T) {
	latest, snapshot := Latest(nil)
	assert.True(t, latest.IsZero())
	assert.Empty(t, snapshot)
}
