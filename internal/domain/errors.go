package domain

import (
	"fmt"
	"strings"
)

// ConfigurationError reports one or more requested years outside the
// supported range. All offending years are collected before failing.
type ConfigurationError struct {
	Years []int
}

func (e *ConfigurationError) Error() string {
	parts := make([]string, len(e.Years))
	for i, y := range e.Years {
		parts[i] = fmt.Sprintf("%d", y)
	}
	return fmt.Sprintf("unsupported year(s) %s: supported range is %d-%d",
		strings.Join(parts, ", "), FirstYear, LastYear)
}

// AcquisitionError reports a failed archive download after all retries.
type AcquisitionError struct {
	Year     int
	URL      string
	Attempts int
	Err      error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %d: %d attempt(s) against %s failed: %v",
		e.Year, e.Attempts, e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// ArchiveError reports a corrupt archive or an archive whose contents do not
// yield exactly one data file.
type ArchiveError struct {
	Year       int
	Archive    string
	Candidates []string
	Err        error
}

func (e *ArchiveError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("archive %s (year %d): %v", e.Archive, e.Year, e.Err)
	case len(e.Candidates) == 0:
		return fmt.Sprintf("archive %s (year %d): no data file found", e.Archive, e.Year)
	default:
		return fmt.Sprintf("archive %s (year %d): ambiguous contents, %d data files: %s",
			e.Archive, e.Year, len(e.Candidates), strings.Join(e.Candidates, ", "))
	}
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// SchemaError reports a column required by the canonical schema that is still
// absent after all rename and drop rules were applied.
type SchemaError struct {
	Year   int
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("year %d: required column %q absent after schema reconciliation", e.Year, e.Column)
}

// NotFoundError reports a city name with no row in the city reference table.
type NotFoundError struct {
	City string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("city %q not found in city reference table", e.City)
}

// AmbiguityError reports a city name matching more than one row. Callers must
// disambiguate rather than silently receive the first match.
type AmbiguityError struct {
	City    string
	Matches int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("city %q is ambiguous: %d rows match", e.City, e.Matches)
}
