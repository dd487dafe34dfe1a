package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when an expected identifying column is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrBadDate is returned for a date header that cannot be parsed.
	ErrBadDate = errors.New("invalid date")
	// ErrBadCount is returned for a count cell that is not a whole number.
	ErrBadCount = errors.New("invalid count")

	// ErrEmptyCountryQuery is returned by FindCountry for a blank name.
	ErrEmptyCountryQuery = errors.New("empty country query")
	// ErrCountryNotFound is returned by FindCountry when no table row matches.
	ErrCountryNotFound = errors.New("country not found")
)

// DataLoadError reports a source that could not be fetched or parsed. Any
// DataLoadError aborts the whole build.
type DataLoadError struct {
	Source  string // "Confirmed", "Deaths", "Recovered" or "country_codes"
	Locator string
	Err     error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s from %s: %v", e.Source, e.Locator, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }
