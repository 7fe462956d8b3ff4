package volatility

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch/internal/dataset"
)

type obsRow struct {
	asin     string
	date     string
	price    string
	flag3    bool
	flag5    bool
	group    string
	category string
	subtype  string
	brand    string
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func buildDataset(t *testing.T, rows ...obsRow) *dataset.Dataset {
	t.Helper()
	obs := make([]dataset.Observation, 0, len(rows))
	for _, s := range rows {
		obs = append(obs, dataset.Observation{
			ASIN:             s.asin,
			Date:             mustDate(t, s.date),
			SettledPrice:     decimal.RequireFromString(s.price),
			Brand:            s.brand,
			TertiaryCategory: s.category,
			ItemSubtype:      s.subtype,
			Group:            s.group,
			Flag3Day5Pct:     s.flag3,
			Flag5Day10Pct:    s.flag5,
		})
	}
	return dataset.New("test", obs)
}

// b001 is the three-row history used by the acceptance scenarios.
func b001(t *testing.T) *dataset.Dataset {
	return buildDataset(t,
		obsRow{asin: "B001", date: "2024-01-01", price: "10.00", category: "Lamps", subtype: "Desk", group: "Lighting", brand: "Acme"},
		obsRow{asin: "B001", date: "2024-01-03", price: "9.00", flag3: true, category: "Lamps", subtype: "Desk", group: "Lighting", brand: "Acme"},
		obsRow{asin: "B001", date: "2024-01-05", price: "9.50", flag5: true, category: "Lamps", subtype: "Desk", group: "Lighting", brand: "Acme"},
	)
}

func newTestEngine() *Engine {
	return NewEngine(NewBuilder("", "", ""))
}
