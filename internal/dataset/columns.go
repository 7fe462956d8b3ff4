package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type field int

const (
	fieldASIN field = iota
	fieldDate
	fieldSettledPrice
	fieldBrand
	fieldTertiaryCategory
	fieldItemSubtype
	fieldGroup
	fieldFlag3Day5Pct
	fieldFlag5Day10Pct
)

var fieldNames = map[field]string{
	fieldASIN:             "asin",
	fieldDate:             "date",
	fieldSettledPrice:     "settled_price",
	fieldBrand:            "brand",
	fieldTertiaryCategory: "tertiary_category",
	fieldItemSubtype:      "item_subtype",
	fieldGroup:            "group",
	fieldFlag3Day5Pct:     "flag_3day_5pct",
	fieldFlag5Day10Pct:    "flag_5day_10pct",
}

// Header aliases, compared after normalizeHeader. The Chinese names are the
// headers written by the upstream price processor.
var headerAliases = map[field][]string{
	fieldASIN:             {"asin"},
	fieldDate:             {"date", "日期"},
	fieldSettledPrice:     {"settled_price", "settled_price($)", "settledprice", "结算价($)", "结算价"},
	fieldBrand:            {"brand", "品牌"},
	fieldTertiaryCategory: {"tertiary_category", "category", "三级分类"},
	fieldItemSubtype:      {"item_subtype", "subtype", "项目细分"},
	fieldGroup:            {"group", "组别"},
	fieldFlag3Day5Pct:     {"flag_3day_5pct", "flag3day5pct", "波动_3天_5%"},
	fieldFlag5Day10Pct:    {"flag_5day_10pct", "flag5day10pct", "波动_5天_10%"},
}

var optionalFields = map[field]bool{
	fieldBrand: true,
	fieldGroup: true,
}

// TableOptions controls how tabular sources decode rows.
type TableOptions struct {
	// GroupAliases maps raw group labels to GroupLighting or GroupElectrical.
	GroupAliases map[string]string
}

// NormalizeGroup maps a raw group label through GroupAliases and canonical spellings.
func (o TableOptions) NormalizeGroup(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for from, to := range o.GroupAliases {
		if strings.EqualFold(from, raw) {
			return to
		}
	}
	switch {
	case strings.EqualFold(raw, GroupLighting):
		return GroupLighting
	case strings.EqualFold(raw, GroupElectrical):
		return GroupElectrical
	}
	return raw
}

type columnMap map[field]int

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	h = strings.ToLower(h)
	return strings.ReplaceAll(h, " ", "_")
}

func mapColumns(header []string) (columnMap, error) {
	cols := make(columnMap)
	for i, h := range header {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		for f, aliases := range headerAliases {
			if _, seen := cols[f]; seen {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					cols[f] = i
					break
				}
			}
		}
	}

	var missing []string
	for f := fieldASIN; f <= fieldFlag5Day10Pct; f++ {
		if _, ok := cols[f]; !ok && !optionalFields[f] {
			missing = append(missing, fieldNames[f])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columnMap) cell(row []string, f field) string {
	idx, ok := c[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (c columnMap) decode(row []string, opts TableOptions) (Observation, error) {
	asin := c.cell(row, fieldASIN)
	if asin == "" {
		return Observation{}, fmt.Errorf("empty asin")
	}

	date, err := ParseDate(c.cell(row, fieldDate))
	if err != nil {
		return Observation{}, err
	}

	price, err := ParsePrice(c.cell(row, fieldSettledPrice))
	if err != nil {
		return Observation{}, err
	}

	flag3, err := ParseFlag(c.cell(row, fieldFlag3Day5Pct))
	if err != nil {
		return Observation{}, fmt.Errorf("%s: %w", fieldNames[fieldFlag3Day5Pct], err)
	}
	flag5, err := ParseFlag(c.cell(row, fieldFlag5Day10Pct))
	if err != nil {
		return Observation{}, fmt.Errorf("%s: %w", fieldNames[fieldFlag5Day10Pct], err)
	}

	return Observation{
		ASIN:             asin,
		Date:             date,
		SettledPrice:     price,
		Brand:            c.cell(row, fieldBrand),
		TertiaryCategory: c.cell(row, fieldTertiaryCategory),
		ItemSubtype:      c.cell(row, fieldItemSubtype),
		Group:            opts.NormalizeGroup(c.cell(row, fieldGroup)),
		Flag3Day5Pct:     flag3,
		Flag5Day10Pct:    flag5,
	}, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/1/2",
	"2006/1/2 15:04:05",
	"01-02-06",
	"1/2/2006",
}

// ParseDate accepts ISO-like layouts and Excel serial day numbers.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
		}
		return Day(t), nil
	}
	return time.Time{}, fmt.Errorf("parse date %q: unsupported format", s)
}

// ParsePrice parses a settled price such as "9.50", "$1,299.00". The result must be positive.
func ParsePrice(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty settled price")
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse settled price %q: %w", s, err)
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("settled price %q must be greater than zero", s)
	}
	return price, nil
}

// ParseFlag parses boolean cells. Blank cells are false.
func ParseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "f", "no", "n", "否":
		return false, nil
	case "1", "true", "t", "yes", "y", "是":
		return true, nil
	}
	return false, fmt.Errorf("invalid flag value %q", s)
}
