package volatility

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"pricewatch/internal/dataset"
)

// All is the pass-through choice of every filter.
const All = "All"

// Group selects the coarse product group.
type Group string

const (
	GroupAll        Group = All
	GroupLighting   Group = dataset.GroupLighting
	GroupElectrical Group = dataset.GroupElectrical
)

// Mode selects which precomputed volatility flags a row must carry.
type Mode string

const (
	// ModeAll keeps rows with either flag set.
	ModeAll Mode = All
	// ModeThreeDay keeps rows flagged for a >5% move within 3 days.
	ModeThreeDay Mode = "3-day-5pct"
	// ModeFiveDay keeps rows flagged for a >10% move within 5 days.
	ModeFiveDay Mode = "5-day-10pct"
	// ModeBoth keeps rows carrying both flags on the same row.
	ModeBoth Mode = "Both"
)

// Groups lists the group choices in display order.
var Groups = []Group{GroupAll, GroupLighting, GroupElectrical}

// Modes lists the volatility choices in display order.
var Modes = []Mode{ModeAll, ModeThreeDay, ModeFiveDay, ModeBoth}

// Criteria is one immutable filter selection.
type Criteria struct {
	Group    Group  `validate:"oneof=All Lighting Electrical"`
	Mode     Mode   `validate:"oneof=All 3-day-5pct 5-day-10pct Both"`
	Category string `validate:"required"`
	Subtype  string `validate:"required"`
}

var validate = validator.New()

// Normalize returns a copy with blank fields set to All and enum case canonicalised.
func (c Criteria) Normalize() Criteria {
	if g, err := ParseGroup(string(c.Group)); err == nil {
		c.Group = g
	}
	if m, err := ParseMode(string(c.Mode)); err == nil {
		c.Mode = m
	}
	c.Category = normalizeChoice(c.Category)
	c.Subtype = normalizeChoice(c.Subtype)
	return c
}

// Validate reports unknown group or mode values.
func (c Criteria) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid criteria: %w", err)
	}
	return nil
}

// Key identifies the selection, e.g. for memoising results.
func (c Criteria) Key() string {
	return strings.Join([]string{string(c.Group), string(c.Mode), c.Category, c.Subtype}, "\x1f")
}

func (c Criteria) String() string {
	return fmt.Sprintf("group=%s volatility=%s category=%s subtype=%s", c.Group, c.Mode, c.Category, c.Subtype)
}

func normalizeChoice(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, All) {
		return All
	}
	return v
}

// ParseGroup parses a group name case-insensitively. Blank means All.
func ParseGroup(s string) (Group, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return GroupAll, nil
	}
	for _, g := range Groups {
		if strings.EqualFold(s, string(g)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown group %q", s)
}

// ParseMode parses a volatility mode. Short forms 3d/5d are accepted.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ModeAll, nil
	case "3-day-5pct", "3d", "3day":
		return ModeThreeDay, nil
	case "5-day-10pct", "5d", "5day":
		return ModeFiveDay, nil
	case "both":
		return ModeBoth, nil
	}
	return "", fmt.Errorf("unknown volatility type %q", s)
}

// Predicate reports whether a row survives a filter step.
type Predicate func(dataset.Observation) bool

func keep(rows []dataset.Observation, pred Predicate) []dataset.Observation {
	out := make([]dataset.Observation, 0, len(rows))
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// ByGroup is step 1 of the pipeline.
func ByGroup(rows []dataset.Observation, g Group) []dataset.Observation {
	if g == GroupAll || g == "" {
		return rows
	}
	return keep(rows, func(o dataset.Observation) bool { return o.Group == string(g) })
}

// ByMode is step 2. ModeAll still drops rows carrying neither flag.
func ByMode(rows []dataset.Observation, m Mode) []dataset.Observation {
	return keep(rows, modePredicate(m))
}

func modePredicate(m Mode) Predicate {
	switch m {
	case ModeThreeDay:
		return func(o dataset.Observation) bool { return o.Flag3Day5Pct }
	case ModeFiveDay:
		return func(o dataset.Observation) bool { return o.Flag5Day10Pct }
	case ModeBoth:
		return func(o dataset.Observation) bool { return o.Flag3Day5Pct && o.Flag5Day10Pct }
	default:
		return func(o dataset.Observation) bool { return o.Flag3Day5Pct || o.Flag5Day10Pct }
	}
}

// ByCategory is step 3.
func ByCategory(rows []dataset.Observation, category string) []dataset.Observation {
	if category == All || category == "" {
		return rows
	}
	return keep(rows, func(o dataset.Observation) bool { return o.TertiaryCategory == category })
}

// BySubtype is step 4.
func BySubtype(rows []dataset.Observation, subtype string) []dataset.Observation {
	if subtype == All || subtype == "" {
		return rows
	}
	return keep(rows, func(o dataset.Observation) bool { return o.ItemSubtype == subtype })
}

// Apply runs the four filters in order over a snapshot.
func Apply(rows []dataset.Observation, c Criteria) []dataset.Observation {
	out := ByGroup(rows, c.Group)
	out = ByMode(out, c.Mode)
	out = ByCategory(out, c.Category)
	return BySubtype(out, c.Subtype)
}

// OptionSet holds the choices each filter can offer for the current selection.
type OptionSet struct {
	Groups     []Group
	Modes      []Mode
	Categories []string
	Subtypes   []string
}

// Options derives category choices from the group+mode output and subtype choices
// from the category output, so no offered combination is empty.
func Options(snapshot []dataset.Observation, c Criteria) OptionSet {
	modeRows := ByMode(ByGroup(snapshot, c.Group), c.Mode)
	categoryRows := ByCategory(modeRows, c.Category)

	return OptionSet{
		Groups:     append([]Group(nil), Groups...),
		Modes:      append([]Mode(nil), Modes...),
		Categories: choices(modeRows, func(o dataset.Observation) string { return o.TertiaryCategory }),
		Subtypes:   choices(categoryRows, func(o dataset.Observation) string { return o.ItemSubtype }),
	}
}

func choices(rows []dataset.Observation, value func(dataset.Observation) string) []string {
	seen := make(map[string]struct{})
	distinct := make([]string, 0)
	for _, r := range rows {
		v := value(r)
		if v == "" || v == All {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	sort.Strings(distinct)
	return append([]string{All}, distinct...)
}
