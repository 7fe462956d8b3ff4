package volatility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewatch/internal/dataset"
)

func flagGrid(t *testing.T) []dataset.Observation {
	return buildDataset(t,
		obsRow{asin: "N", date: "2024-02-10", price: "1.00"},
		obsRow{asin: "T", date: "2024-02-10", price: "1.00", flag3: true},
		obsRow{asin: "F", date: "2024-02-10", price: "1.00", flag5: true},
		obsRow{asin: "B", date: "2024-02-10", price: "1.00", flag3: true, flag5: true},
	).Observations()
}

func asins(rows []dataset.Observation) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ASIN)
	}
	return out
}

func TestByMode(t *testing.T) {
	rows := flagGrid(t)

	tests := []struct {
		mode Mode
		want []string
	}{
		{ModeAll, []string{"T", "F", "B"}},
		{ModeThreeDay, []string{"T", "B"}},
		{ModeFiveDay, []string{"F", "B"}},
		{ModeBoth, []string{"B"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, asins(ByMode(rows, tt.mode)))
		})
	}
}

func TestBothIsSubsetOfAll(t *testing.T) {
	rows := flagGrid(t)
	all := make(map[int]bool)
	for _, r := range ByMode(rows, ModeAll) {
		all[r.Row] = true
	}
	for _, r := range ByMode(rows, ModeBoth) {
		assert.True(t, all[r.Row], "row %d kept by Both but not by All", r.Row)
	}
}

func TestApplyOrderAndPassThrough(t *testing.T) {
	rows := buildDataset(t,
		obsRow{asin: "A", date: "2024-02-10", price: "1.00", flag3: true, group: "Lighting", category: "Bulbs", subtype: "LED"},
		obsRow{asin: "B", date: "2024-02-10", price: "1.00", flag3: true, group: "Electrical", category: "Bulbs", subtype: "Halogen"},
		obsRow{asin: "C", date: "2024-02-10", price: "1.00", group: "Lighting", category: "Bulbs", subtype: "LED"},
		obsRow{asin: "D", date: "2024-02-10", price: "1.00", flag5: true, category: "Switches", subtype: "Dimmer"},
	).Observations()

	assert.Equal(t, []string{"A", "B", "D"}, asins(Apply(rows, Criteria{}.Normalize())))
	assert.Equal(t, []string{"A"}, asins(Apply(rows, Criteria{Group: GroupLighting}.Normalize())))
	assert.Equal(t, []string{"A", "B"}, asins(Apply(rows, Criteria{Category: "Bulbs"}.Normalize())))
	assert.Equal(t, []string{"B"}, asins(Apply(rows, Criteria{Category: "Bulbs", Subtype: "Halogen"}.Normalize())))
	assert.Empty(t, Apply(rows, Criteria{Group: GroupElectrical, Category: "Switches"}.Normalize()))
}

func TestOptionsDependOnUpstreamFilters(t *testing.T) {
	rows := buildDataset(t,
		obsRow{asin: "A", date: "2024-02-10", price: "1.00", flag3: true, group: "Lighting", category: "Lamps", subtype: "Floor"},
		obsRow{asin: "B", date: "2024-02-10", price: "1.00", flag3: true, group: "Lighting", category: "Bulbs", subtype: "LED"},
		obsRow{asin: "C", date: "2024-02-10", price: "1.00", flag5: true, group: "Electrical", category: "Cable", subtype: "Coax"},
		obsRow{asin: "D", date: "2024-02-10", price: "1.00", group: "Electrical", category: "Plugs", subtype: "EU"},
	).Observations()

	opts := Options(rows, Criteria{}.Normalize())
	assert.Equal(t, []string{All, "Bulbs", "Cable", "Lamps"}, opts.Categories, "rows with no flag never offer a category")
	assert.Equal(t, []string{All, "Coax", "Floor", "LED"}, opts.Subtypes)

	opts = Options(rows, Criteria{Group: GroupLighting, Category: "Bulbs"}.Normalize())
	assert.Equal(t, []string{All, "Bulbs", "Lamps"}, opts.Categories)
	assert.Equal(t, []string{All, "LED"}, opts.Subtypes)

	opts = Options(rows, Criteria{Group: GroupElectrical, Mode: ModeThreeDay}.Normalize())
	assert.Equal(t, []string{All}, opts.Categories)
	assert.Equal(t, []string{All}, opts.Subtypes)
	assert.Len(t, opts.Groups, 3)
	assert.Len(t, opts.Modes, 4)
}

func TestParseModeAndGroup(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeAll, "ALL": ModeAll, "3d": ModeThreeDay, "5-day-10pct": ModeFiveDay, "both": ModeBoth} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("7d")
	assert.Error(t, err)

	g, err := ParseGroup("electrical")
	require.NoError(t, err)
	assert.Equal(t, GroupElectrical, g)
	_, err = ParseGroup("Plumbing")
	assert.Error(t, err)
}

func TestCriteriaNormalizeAndValidate(t *testing.T) {
	c := Criteria{Category: "  all ", Subtype: "LED"}.Normalize()
	assert.Equal(t, Criteria{Group: GroupAll, Mode: ModeAll, Category: All, Subtype: "LED"}, c)
	require.NoError(t, c.Validate())

	assert.Error(t, Criteria{Group: "Plumbing", Mode: ModeAll, Category: All, Subtype: All}.Validate())
	assert.Error(t, Criteria{Group: GroupAll, Mode: ModeAll}.Validate(), "blank category is rejected before normalisation")
	assert.NotEqual(t, Criteria{Category: "a"}.Normalize().Key(), Criteria{Subtype: "a"}.Normalize().Key())
}
