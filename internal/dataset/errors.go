package dataset

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrLoad matches every LoadError.
var ErrLoad = eris.New("dataset: load failed")

// Source names used in LoadError.
const (
	SourceTable    = "table"
	SourceCounties = "counties"
	SourceStates   = "states"
	SourceMetros   = "metros"
)

// LoadError reports which input could not be fetched or decoded. Nothing is
// drawn when any input fails.
type LoadError struct {
	Source   string
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset: load %s from %q: %v", e.Source, e.Location, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrLoad.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

func loadErr(source, location string, err error) error {
	if err == nil {
		return nil
	}
	return &LoadError{Source: source, Location: location, Err: err}
}
