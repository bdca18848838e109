package domain

import (
	"time"

	"github.com/go-gota/gota/dataframe"
)

// YearDataset is the harmonized table for one release year: one row per
// reported accident, canonical column names, CommunityKey and UID derived.
// It is rebuilt from disk on every load and immutable from the caller's
// perspective once returned.
type YearDataset struct {
	Year     int
	Frame    dataframe.DataFrame
	LoadedAt time.Time
}

// NumRecords returns the number of accident rows.
func (d YearDataset) NumRecords() int {
	return d.Frame.Nrow()
}

// HasColumn reports whether the named column exists.
func (d YearDataset) HasColumn(name string) bool {
	return hasColumn(d.Frame, name)
}

// Column returns the named column as strings, or a SchemaError if it is
// absent from the harmonized table.
func (d YearDataset) Column(name string) ([]string, error) {
	if !hasColumn(d.Frame, name) {
		return nil, &SchemaError{Year: d.Year, Column: name}
	}
	return d.Frame.Col(name).Records(), nil
}

// CityInfo is the static municipality reference table: one row per city with
// its area, population, and normalized regional key.
type CityInfo struct {
	Frame dataframe.DataFrame
}

// NumCities returns the number of reference rows.
func (c CityInfo) NumCities() int {
	return c.Frame.Nrow()
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
