package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"pricewatch/internal/volatility"
)

// ParseCriteria builds a selection from raw flag values. Blank means All.
func ParseCriteria(group, mode, category, subtype string) (volatility.Criteria, error) {
	g, err := volatility.ParseGroup(group)
	if err != nil {
		return volatility.Criteria{}, err
	}
	m, err := volatility.ParseMode(mode)
	if err != nil {
		return volatility.Criteria{}, err
	}
	return volatility.Criteria{Group: g, Mode: m, Category: category, Subtype: subtype}.Normalize(), nil
}

// Query prints the volatility report for the selected filters.
func (a *App) Query(ctx context.Context, opts QueryOptions) error {
	svc, err := a.loadService(ctx)
	if err != nil {
		return err
	}

	report, err := svc.Query(ctx, opts.Criteria)
	if done, err := a.reportState(err); done {
		return err
	}

	a.printBanner(report.LatestDate)
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, strings.Join(reportHeader, "\t"))
	for _, row := range report.Rows {
		fmt.Fprintln(writer, strings.Join(reportRecord(row), "\t"))
	}
	writer.Flush()

	fmt.Fprintf(a.Out, "\n%d volatile ASINs (%s)\n", report.Count(), report.Criteria)
	return nil
}

// reportState prints informational query states. done reports whether the caller should stop.
func (a *App) reportState(err error) (bool, error) {
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, volatility.ErrEmptySnapshot):
		a.Logger.Warn().Msg("dataset is empty")
		fmt.Fprintln(a.Out, "dataset is empty")
		return true, nil
	case errors.Is(err, volatility.ErrNoQualifyingProducts):
		fmt.Fprintln(a.Out, volatility.ErrNoQualifyingProducts.Error())
		return true, nil
	default:
		return true, err
	}
}

func (a *App) printBanner(latest time.Time) {
	fmt.Fprintf(a.Out, "Data updated: %s %s\n\n", latest.Format(time.DateOnly), a.Config.Report.UpdateTime)
}

var reportHeader = []string{
	"Date",
	"ASIN",
	"Link",
	"Brand",
	"Category",
	"Subtype",
	"Current",
	"3 days ago",
	"5 days ago",
	"Had 3d>5%",
	"Had 5d>10%",
}

func reportRecord(row volatility.Summary) []string {
	return []string{
		row.Date,
		row.ASIN,
		row.ProductURL,
		sanitizeInline(row.Brand),
		sanitizeInline(row.TertiaryCategory),
		sanitizeInline(row.ItemSubtype),
		row.CurrentPriceText,
		row.Price3DaysAgo,
		row.Price5DaysAgo,
		yesNo(row.Had3DayFlag),
		yesNo(row.Had5DayFlag),
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return strings.ReplaceAll(cleaned, "\t", " ")
}
