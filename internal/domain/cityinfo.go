package domain

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// City reference table column names.
const (
	ColCity        = "city"
	ColArea        = "sq km"
	ColPopulation  = "population"
	ColRegionalKey = "regional key"

	// rawAreaColumn is the header used in city_info.csv.
	rawAreaColumn = "area in km²"
)

// ParseCityInfo parses the static semicolon-delimited city reference table.
// The raw area header is renamed to its canonical form and each raw regional
// code is truncated to the normalized regional key.
func ParseCityInfo(r io.Reader) (CityInfo, error) {
	df := dataframe.ReadCSV(r,
		dataframe.WithDelimiter(';'),
		dataframe.HasHeader(true),
		dataframe.WithTypes(map[string]series.Type{
			ColCity:        series.String,
			ColRegionalKey: series.String,
			rawAreaColumn:  series.String,
			ColArea:        series.String,
		}),
	)
	if df.Error() != nil {
		return CityInfo{}, fmt.Errorf("parse city info: %w", df.Error())
	}

	if hasColumn(df, rawAreaColumn) && !hasColumn(df, ColArea) {
		df = df.Rename(ColArea, rawAreaColumn)
	}

	for _, name := range []string{ColCity, ColArea, ColPopulation, ColRegionalKey} {
		if !hasColumn(df, name) {
			return CityInfo{}, fmt.Errorf("parse city info: missing column %q", name)
		}
	}

	areas := df.Col(ColArea).Records()
	floats := make([]float64, len(areas))
	for i, rec := range areas {
		floats[i] = parseLocaleFloat(rec)
	}
	df = df.Mutate(series.New(floats, series.Float, ColArea))

	rawKeys := df.Col(ColRegionalKey).Records()
	keys := make([]string, len(rawKeys))
	for i, raw := range rawKeys {
		keys[i] = TruncateRegionalKey(raw)
	}
	df = df.Mutate(series.New(keys, series.String, ColRegionalKey))

	if df.Error() != nil {
		return CityInfo{}, fmt.Errorf("parse city info: %w", df.Error())
	}
	return CityInfo{Frame: df}, nil
}

// TruncateRegionalKey normalizes a raw municipal code to the fixed regional
// key form: the first 5 characters plus everything from position 10 onward.
// The dropped middle segment is an association code that city metadata does
// not carry consistently. Codes too short to truncate are returned unchanged.
func TruncateRegionalKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < 10 {
		return raw
	}
	return raw[:5] + raw[9:]
}

// RegionalKeyFor looks up the regional key for an exact city name. Zero
// matches yield a NotFoundError; more than one match yields an
// AmbiguityError so callers never silently act on the wrong municipality.
func RegionalKeyFor(ci CityInfo, cityName string) (string, error) {
	cities := ci.Frame.Col(ColCity).Records()
	keys := ci.Frame.Col(ColRegionalKey).Records()

	var found []string
	for i, city := range cities {
		if city == cityName {
			found = append(found, keys[i])
		}
	}

	switch len(found) {
	case 0:
		return "", &NotFoundError{City: cityName}
	case 1:
		return found[0], nil
	default:
		return "", &AmbiguityError{City: cityName, Matches: len(found)}
	}
}
