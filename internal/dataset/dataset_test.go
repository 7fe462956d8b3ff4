package dataset

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalisesRows(t *testing.T) {
	input := []Observation{
		{ASIN: "B001", Date: time.Date(2024, 1, 5, 13, 45, 0, 0, time.FixedZone("CST", 8*3600)), SettledPrice: decimal.NewFromInt(9)},
		{ASIN: "B002", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), SettledPrice: decimal.NewFromInt(3)},
	}
	ds := New("memory", input)

	require.Equal(t, 2, ds.Len())
	assert.NotEmpty(t, ds.ID)
	assert.Equal(t, "memory", ds.Source)

	obs := ds.Observations()
	assert.Equal(t, 0, obs[0].Row)
	assert.Equal(t, 1, obs[1].Row)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), obs[0].Date)

	latest, ok := ds.MaxDate()
	require.True(t, ok)
	assert.Equal(t, "2024-01-05", latest.Format(time.DateOnly))

	input[0].ASIN = "mutated"
	assert.Equal(t, "B001", ds.Observations()[0].ASIN, "New copies its input")
	assert.NotEqual(t, ds.ID, New("memory", input).ID)
}

func TestEmptyDataset(t *testing.T) {
	ds := New("empty", nil)
	assert.Zero(t, ds.Len())
	_, ok := ds.MaxDate()
	assert.False(t, ok)

	var nilDS *Dataset
	assert.Zero(t, nilDS.Len())
	assert.Nil(t, nilDS.Observations())
	assert.Empty(t, nilDS.History("B001"))
}

func TestHistoryOrdersByDateThenRow(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	ds := New("memory", []Observation{
		{ASIN: "B001", Date: day(5), SettledPrice: decimal.NewFromInt(5)},
		{ASIN: "B002", Date: day(1), SettledPrice: decimal.NewFromInt(1)},
		{ASIN: "B001", Date: day(2), SettledPrice: decimal.NewFromInt(2)},
		{ASIN: "B001", Date: day(5), SettledPrice: decimal.NewFromInt(6)},
	})

	history := ds.History("B001")
	require.Len(t, history, 3)
	assert.Equal(t, []int{2, 0, 3}, []int{history[0].Row, history[1].Row, history[2].Row})
	assert.Empty(t, ds.History("B999"))
}

func TestHolderSwap(t *testing.T) {
	var h Holder
	assert.Nil(t, h.Load())

	first := New("a", nil)
	assert.Nil(t, h.Store(first))
	assert.Same(t, first, h.Load())

	second := New("b", nil)
	assert.Same(t, first, h.Store(second))
	assert.Same(t, second, h.Load())
}

func TestDay(t *testing.T) {
	assert.True(t, Day(time.Time{}).IsZero())
	in := time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Day(in))
}
