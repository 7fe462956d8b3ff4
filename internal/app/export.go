package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pricewatch/internal/volatility"
)

const reportSheet = "Report"

// Export writes the summary table as CSV and/or XLSX.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.XLSXPath == "" {
		return errors.New("at least one of --csv or --xlsx must be provided")
	}

	svc, err := a.loadService(ctx)
	if err != nil {
		return err
	}

	report, err := svc.Query(ctx, opts.Criteria)
	if done, err := a.reportState(err); done {
		return err
	}

	a.Logger.Info().Int("rows", report.Count()).Str("criteria", report.Criteria.String()).Msg("exporting report")

	if opts.CSVPath != "" {
		if err := writeReportCSV(opts.CSVPath, report, a.Config.Export.BOM); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	if opts.XLSXPath != "" {
		if err := writeReportXLSX(opts.XLSXPath, report); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	return nil
}

func writeReportCSV(path string, report *volatility.Report, bom bool) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// Excel needs the BOM to detect UTF-8.
	if bom {
		if _, err := file.WriteString("\ufeff"); err != nil {
			return err
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(reportHeader); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := writer.Write(reportRecord(row)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeReportXLSX(path string, report *volatility.Report) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}

	header := make([]any, len(reportHeader))
	for i, h := range reportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range report.Rows {
		record := reportRecord(row)
		values := make([]any, len(record))
		for j, v := range record {
			values[j] = v
		}
		// Current price is numeric so the sheet can sort by it.
		values[6] = row.CurrentPrice.InexactFloat64()

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return err
		}

		link, err := excelize.CoordinatesToCellName(3, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellHyperLink(reportSheet, link, row.ProductURL, "External"); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
