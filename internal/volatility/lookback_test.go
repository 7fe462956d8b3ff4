package volatility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverExactOffset(t *testing.T) {
	ds := buildDataset(t,
		obsRow{asin: "A", date: "2024-05-01", price: "20.00"},
		obsRow{asin: "A", date: "2024-05-04", price: "18.50"},
		obsRow{asin: "A", date: "2024-05-05", price: "19.00"},
		obsRow{asin: "B", date: "2024-05-03", price: "4.00"},
	)
	r := NewResolver(ds.Observations())
	ref := mustDate(t, "2024-05-05")

	price, ok := r.PriceAt("A", ref, Lookback5Day)
	require.True(t, ok)
	assert.Equal(t, "20", price.String())

	_, ok = r.PriceAt("A", ref, Lookback3Day)
	assert.False(t, ok, "2024-05-03 is a gap for A; nearby rows must not be used")

	_, ok = r.PriceAt("missing", ref, Lookback3Day)
	assert.False(t, ok)

	price, ok = r.PriceAt("B", ref, Lookback3Day)
	require.True(t, ok)
	assert.Equal(t, "4", price.String())
}

func TestResolverDuplicateDateTakesLaterRow(t *testing.T) {
	ds := buildDataset(t,
		obsRow{asin: "A", date: "2024-05-03", price: "7.00"},
		obsRow{asin: "A", date: "2024-05-05", price: "9.00"},
		obsRow{asin: "A", date: "2024-05-03", price: "7.25", flag3: true},
	)
	r := NewResolver(ds.Observations())

	o, ok := r.Lookup("A", mustDate(t, "2024-05-05"), 2)
	require.True(t, ok)
	assert.Equal(t, "7.25", o.SettledPrice.String())
	assert.Equal(t, 2, o.Row)
}

func TestResolverCrossesMonthBoundary(t *testing.T) {
	ds := buildDataset(t,
		obsRow{asin: "A", date: "2024-02-28", price: "3.00"},
		obsRow{asin: "A", date: "2024-03-01", price: "3.30"},
	)
	r := NewResolver(ds.Observations())
	ref := mustDate(t, "2024-03-01")

	price, ok := r.PriceAt("A", ref, 2)
	require.True(t, ok, "2024-02-29 exists, so two days back is 2024-02-28")
	assert.Equal(t, "3", price.String())

	_, ok = r.PriceAt("A", ref, 1)
	assert.False(t, ok)
}

func TestFlagsBefore(t *testing.T) {
	ds := buildDataset(t,
		obsRow{asin: "A", date: "2024-05-01", price: "1.00", flag5: true},
		obsRow{asin: "A", date: "2024-05-04", price: "1.00", flag3: true},
		obsRow{asin: "A", date: "2024-05-05", price: "1.00"},
		obsRow{asin: "A", date: "2024-04-30", price: "1.00", flag5: true},
	)
	r := NewResolver(ds.Observations())

	f3, f5 := r.FlagsBefore("A", mustDate(t, "2024-05-05"), Lookback5Day)
	assert.True(t, f3)
	assert.True(t, f5)

	f3, f5 = r.FlagsBefore("A", mustDate(t, "2024-05-05"), 1)
	assert.True(t, f3)
	assert.False(t, f5)
}
