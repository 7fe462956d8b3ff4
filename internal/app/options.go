package app

import (
	"context"
	"fmt"
	"strings"
)

// flagLegend explains the two precomputed volatility flags.
const flagLegend = `Volatility types:
  3-day-5pct   settled price moved more than 5% within 3 days
  5-day-10pct  settled price moved more than 10% within 5 days
  All          either flag set on the latest date
  Both         both flags set on the same latest-date row`

// Options lists the choices each filter offers given the current selection.
func (a *App) Options(ctx context.Context, opts OptionsOptions) error {
	svc, err := a.loadService(ctx)
	if err != nil {
		return err
	}

	latest, set, err := svc.Options(ctx, opts.Criteria)
	if err != nil {
		return err
	}
	if latest.IsZero() {
		fmt.Fprintln(a.Out, "dataset is empty")
		return nil
	}

	a.printBanner(latest)
	groups := make([]string, len(set.Groups))
	for i, g := range set.Groups {
		groups[i] = string(g)
	}
	modes := make([]string, len(set.Modes))
	for i, m := range set.Modes {
		modes[i] = string(m)
	}

	fmt.Fprintf(a.Out, "Group:      %s\n", strings.Join(groups, ", "))
	fmt.Fprintf(a.Out, "Volatility: %s\n", strings.Join(modes, ", "))
	fmt.Fprintf(a.Out, "Category:   %s\n", strings.Join(set.Categories, ", "))
	fmt.Fprintf(a.Out, "Subtype:    %s\n\n", strings.Join(set.Subtypes, ", "))
	fmt.Fprintln(a.Out, flagLegend)
	return nil
}
