package dataset

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// headerScanRows bounds how far down a sheet the header row is searched for.
const headerScanRows = 10

// XLSXSource reads observations from an Excel workbook.
type XLSXSource struct {
	Path string
	// Sheet defaults to the first sheet of the workbook.
	Sheet   string
	Options TableOptions
}

// Name implements Source.
func (s *XLSXSource) Name() string {
	return s.Path
}

// Observations implements Source.
func (s *XLSXSource) Observations(ctx context.Context) ([]Observation, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return decodeTable(ctx, rows, s.Options)
}

// decodeTable locates the header row and decodes every data row after it.
func decodeTable(ctx context.Context, rows [][]string, opts TableOptions) ([]Observation, error) {
	headerIdx := -1
	var cols columnMap
	var headerErr error
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if isBlankRow(rows[i]) {
			continue
		}
		mapped, err := mapColumns(rows[i])
		if err != nil {
			if headerErr == nil {
				headerErr = err
			}
			continue
		}
		headerIdx, cols = i, mapped
		break
	}
	if headerIdx < 0 {
		if headerErr == nil {
			headerErr = fmt.Errorf("no header row found")
		}
		return nil, headerErr
	}

	obs := make([]Observation, 0, len(rows)-headerIdx-1)
	for i := headerIdx + 1; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlankRow(rows[i]) {
			continue
		}
		o, err := cols.decode(rows[i], opts)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		obs = append(obs, o)
	}

	if len(obs) == 0 {
		return nil, ErrNoRows
	}
	return obs, nil
}
