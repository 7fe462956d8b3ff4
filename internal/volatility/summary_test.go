package volatility

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFormatsLookbacksAndSentinel(t *testing.T) {
	ds := buildDataset(t,
		obsRow{asin: "A", date: "2024-06-08", price: "12.345"},
		obsRow{asin: "A", date: "2024-06-10", price: "11", flag3: true, brand: "Volt"},
		obsRow{asin: "B", date: "2024-06-10", price: "3.5", flag5: true},
	)
	_, snapshot := Latest(ds.Observations())

	b := NewBuilder("https://example.test/item/%s", "无数据", "¥")
	rows := b.Build(mustDate(t, "2024-06-10"), snapshot, NewResolver(ds.Observations()))
	require.Len(t, rows, 2)

	assert.Equal(t, "¥11.00", rows[0].CurrentPriceText)
	assert.True(t, rows[0].CurrentPrice.Equal(decimal.NewFromInt(11)))
	assert.Equal(t, "¥12.35", rows[0].Price3DaysAgo)
	assert.Equal(t, "无数据", rows[0].Price5DaysAgo)
	assert.Equal(t, "Volt", rows[0].Brand)
	assert.Equal(t, "https://example.test/item/A", rows[0].ProductURL)

	assert.Equal(t, "无数据", rows[1].Price3DaysAgo)
	assert.Equal(t, "无数据", rows[1].Price5DaysAgo)
	assert.False(t, rows[1].Had3DayFlag)
	assert.True(t, rows[1].Had5DayFlag)
}

func TestBuildUsesOneRepresentativeRow(t *testing.T) {
	ds := buildDataset(t,
		obsRow{asin: "A", date: "2024-06-10", price: "5.00", flag3: true, brand: "First", category: "Old"},
		obsRow{asin: "A", date: "2024-06-10", price: "6.00", flag5: true, brand: "Second", category: "New"},
	)
	_, snapshot := Latest(ds.Observations())

	rows := NewBuilder("", "", "").Build(mustDate(t, "2024-06-10"), snapshot, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "Second", rows[0].Brand)
	assert.Equal(t, "New", rows[0].TertiaryCategory)
	assert.Equal(t, "$6.00", rows[0].CurrentPriceText)
	assert.Equal(t, DefaultNoData, rows[0].Price3DaysAgo)
	assert.True(t, rows[0].Had3DayFlag)
	assert.True(t, rows[0].Had5DayFlag)
}

func TestNewBuilderDefaults(t *testing.T) {
	b := NewBuilder("", "", "")
	assert.Equal(t, DefaultProductURLTemplate, b.ProductURLTemplate)
	assert.Equal(t, "$0.10", b.FormatPrice(decimal.RequireFromString("0.1")))
}
