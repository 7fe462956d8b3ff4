package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// CSVSource reads observations from a delimited text file with a header row.
type CSVSource struct {
	Path string
	// Comma defaults to ','.
	Comma   rune
	Options TableOptions
}

// Name implements Source.
func (s *CSVSource) Name() string {
	return s.Path
}

// Observations implements Source.
func (s *CSVSource) Observations(ctx context.Context) ([]Observation, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if s.Comma != 0 {
		reader.Comma = s.Comma
	}
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return decodeTable(ctx, rows, s.Options)
}
