package volatility

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch/internal/dataset"
)

const (
	DefaultProductURLTemplate = "https://www.amazon.com/dp/%s"
	DefaultNoData             = "no data"
	DefaultCurrencySymbol     = "$"
)

// Summary is one output row per qualifying ASIN.
type Summary struct {
	Date             string
	ASIN             string
	ProductURL       string
	Brand            string
	TertiaryCategory string
	ItemSubtype      string
	CurrentPrice     decimal.Decimal
	CurrentPriceText string
	Price3DaysAgo    string
	Price5DaysAgo    string
	Had3DayFlag      bool
	Had5DayFlag      bool
}

// Builder turns filtered snapshot rows into Summary records.
type Builder struct {
	ProductURLTemplate string
	NoData             string
	CurrencySymbol     string
}

// NewBuilder fills blank settings with defaults.
func NewBuilder(urlTemplate, noData, currency string) Builder {
	if urlTemplate == "" {
		urlTemplate = DefaultProductURLTemplate
	}
	if noData == "" {
		noData = DefaultNoData
	}
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	return Builder{ProductURLTemplate: urlTemplate, NoData: noData, CurrencySymbol: currency}
}

type asinGroup struct {
	rep  dataset.Observation
	had3 bool
	had5 bool
}

// Build emits exactly one Summary per distinct ASIN in filtered, in order of first
// appearance. Descriptive fields and the current price come from the ASIN's latest
// row (date, then source position). The had-flags OR over the ASIN's filtered rows
// and its history within the lookback horizon (the Lookback5Day days before ref).
func (b Builder) Build(ref time.Time, filtered []dataset.Observation, resolver *Resolver) []Summary {
	groups := make(map[string]*asinGroup)
	order := make([]string, 0)
	for _, o := range filtered {
		g, ok := groups[o.ASIN]
		if !ok {
			g = &asinGroup{rep: o}
			groups[o.ASIN] = g
			order = append(order, o.ASIN)
		} else if later(o, g.rep) {
			g.rep = o
		}
		g.had3 = g.had3 || o.Flag3Day5Pct
		g.had5 = g.had5 || o.Flag5Day10Pct
	}

	out := make([]Summary, 0, len(order))
	for _, asin := range order {
		g := groups[asin]
		if resolver != nil {
			prior3, prior5 := resolver.FlagsBefore(asin, ref, Lookback5Day)
			g.had3 = g.had3 || prior3
			g.had5 = g.had5 || prior5
		}
		out = append(out, Summary{
			Date:             g.rep.Date.Format(time.DateOnly),
			ASIN:             asin,
			ProductURL:       b.ProductURL(asin),
			Brand:            g.rep.Brand,
			TertiaryCategory: g.rep.TertiaryCategory,
			ItemSubtype:      g.rep.ItemSubtype,
			CurrentPrice:     g.rep.SettledPrice,
			CurrentPriceText: b.FormatPrice(g.rep.SettledPrice),
			Price3DaysAgo:    b.lookback(resolver, asin, ref, Lookback3Day),
			Price5DaysAgo:    b.lookback(resolver, asin, ref, Lookback5Day),
			Had3DayFlag:      g.had3,
			Had5DayFlag:      g.had5,
		})
	}
	return out
}

func (b Builder) lookback(r *Resolver, asin string, ref time.Time, days int) string {
	if r == nil {
		return b.NoData
	}
	price, ok := r.PriceAt(asin, ref, days)
	if !ok {
		return b.NoData
	}
	return b.FormatPrice(price)
}

// FormatPrice renders a price with the currency symbol and two decimals.
func (b Builder) FormatPrice(p decimal.Decimal) string {
	return b.CurrencySymbol + p.StringFixed(2)
}

// ProductURL renders the product page link for asin.
func (b Builder) ProductURL(asin string) string {
	return fmt.Sprintf(b.ProductURLTemplate, asin)
}
