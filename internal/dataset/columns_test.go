package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-05", "2024-01-05 14:30:00", "2024/01/05", "2024/1/5", "1/5/2024", "45296", " 2024-01-05 "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "yesterday", "-3"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestParsePrice(t *testing.T) {
	cases := map[string]string{
		"9.5":       "9.5",
		"$10.00":    "10",
		"$1,299.99": "1299.99",
		" 0.01 ":    "0.01",
	}
	for in, want := range cases {
		got, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}

	for _, in := range []string{"", "$", "abc", "0", "-1.00"} {
		_, err := ParsePrice(in)
		assert.Error(t, err, in)
	}
}

func TestParseFlag(t *testing.T) {
	for _, in := range []string{"1", "TRUE", "yes", "是", "t"} {
		v, err := ParseFlag(in)
		require.NoError(t, err, in)
		assert.True(t, v, in)
	}
	for _, in := range []string{"", "0", "false", "No", "否"} {
		v, err := ParseFlag(in)
		require.NoError(t, err, in)
		assert.False(t, v, in)
	}
	_, err := ParseFlag("maybe")
	assert.Error(t, err)
}

func TestNormalizeGroup(t *testing.T) {
	opts := TableOptions{GroupAliases: map[string]string{"照明": GroupLighting, "电工": GroupElectrical}}

	assert.Equal(t, GroupLighting, opts.NormalizeGroup("照明"))
	assert.Equal(t, GroupElectrical, opts.NormalizeGroup(" 电工 "))
	assert.Equal(t, GroupLighting, opts.NormalizeGroup("lighting"))
	assert.Equal(t, "Garden", opts.NormalizeGroup("Garden"))
	assert.Empty(t, opts.NormalizeGroup("  "))
}

func TestMapColumns(t *testing.T) {
	cols, err := mapColumns([]string{"\ufeff日期", "ASIN", "结算价($)", "品牌", "三级分类", "项目细分", "组别", "波动_3天_5%", "波动_5天_10%"})
	require.NoError(t, err)
	assert.Equal(t, 0, cols[fieldDate])
	assert.Equal(t, 8, cols[fieldFlag5Day10Pct])

	cols, err = mapColumns([]string{"ASIN", "Date", "Settled Price", "Tertiary Category", "Item Subtype", "flag_3day_5pct", "flag_5day_10pct"})
	require.NoError(t, err, "brand and group are optional")
	_, hasGroup := cols[fieldGroup]
	assert.False(t, hasGroup)

	_, err = mapColumns([]string{"ASIN", "Date"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settled_price")
}
