package dataset

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoRows is reported when a source has a valid header but no data rows.
var ErrNoRows = errors.New("dataset: no rows")

// Source produces the raw observations of one load.
type Source interface {
	Name() string
	Observations(ctx context.Context) ([]Observation, error)
}

// LoadError is fatal for the session: the source could not be read or did not match the schema.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads src into a new Dataset. Any failure is returned as *LoadError.
// A source without data rows yields an empty Dataset, not an error.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	obs, err := src.Observations(ctx)
	if err != nil && !errors.Is(err, ErrNoRows) {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}
	return New(src.Name(), obs), nil
}
