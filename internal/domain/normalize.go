package domain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Canonical column names of the harmonized schema.
const (
	ColState        = "ULAND"
	ColDistrict     = "UREGBEZ"
	ColCounty       = "UKREIS"
	ColMunicipality = "UGEMEINDE"
	ColObjectID     = "OID_"
	ColCommunityKey = "CommunityKey"
	ColUID          = "UID"
)

// renameRule maps one raw header variant to its canonical name. The table is
// a pure lookup applied once per column; a variant is never renamed onto a
// canonical column that already exists in the same table.
type renameRule struct {
	raw       string
	canonical string
}

var renameRules = []renameRule{
	{raw: "IstSonstig", canonical: "IstSonstige"},
	{raw: "STRZUSTAND", canonical: "USTRZUSTAND"},
	{raw: "IstStrasse", canonical: "USTRZUSTAND"},
	{raw: "IstStrassenzustand", canonical: "USTRZUSTAND"},
	{raw: "LICHT", canonical: "ULICHTVERH"},
	{raw: "OBJECTID", canonical: ColObjectID},
	{raw: "OBJECTID_1", canonical: ColObjectID},
}

// deprecatedColumns are dropped when present. They carry no
// cross-year-comparable meaning; absence is not an error.
var deprecatedColumns = []string{"FID", "PLST", "UIDENTSTLA", "UIDENTSTLAE"}

// commaDecimalColumns use the German comma decimal separator in the source
// and are converted to float columns during normalization.
var commaDecimalColumns = []string{"XGCSWGS84", "YGCSWGS84", "LINREFX", "LINREFY"}

// textColumnTypes forces identifier columns to text during parsing so leading
// zeros survive. Keyed by raw header name; absent columns are ignored.
var textColumnTypes = map[string]series.Type{
	ColState:        series.String,
	ColDistrict:     series.String,
	ColCounty:       series.String,
	ColMunicipality: series.String,
	"OBJECTID":      series.String,
	"OBJECTID_1":    series.String,
	ColObjectID:     series.String,
}

// cityStates are administrative units that are simultaneously a state and a
// single municipality: Berlin ("11") and Hamburg ("02"). Their community key
// is forced to "{state}000000" because the source data does not sub-partition
// them meaningfully.
var cityStates = map[string]bool{"11": true, "02": true}

// NormalizeYearCSV parses one release year's raw semicolon CSV and harmonizes
// it into the canonical schema: identifier columns kept as text, coordinate
// columns converted from comma decimals, CommunityKey and UID derived,
// deprecated columns dropped, drifted headers renamed. The input is consumed
// fully; the result carries no reference to it.
func NormalizeYearCSV(r io.Reader, year int) (YearDataset, error) {
	if !YearSupported(year) {
		return YearDataset{}, &ConfigurationError{Years: []int{year}}
	}

	df := dataframe.ReadCSV(r,
		dataframe.WithDelimiter(';'),
		dataframe.HasHeader(true),
		dataframe.WithTypes(textColumnTypes),
	)
	if df.Error() != nil {
		return YearDataset{}, fmt.Errorf("parse year %d csv: %w", year, df.Error())
	}

	df = convertCommaDecimals(df)

	keys, err := communityKeys(df, year)
	if err != nil {
		return YearDataset{}, err
	}
	df = df.Mutate(series.New(keys, series.String, ColCommunityKey))

	df = dropDeprecated(df)
	df = applyRenames(df)

	uids, err := recordUIDs(df, year)
	if err != nil {
		return YearDataset{}, err
	}
	df = df.Mutate(series.New(uids, series.String, ColUID))

	if df.Error() != nil {
		return YearDataset{}, fmt.Errorf("normalize year %d: %w", year, df.Error())
	}

	return YearDataset{Year: year, Frame: df, LoadedAt: clock.Now()}, nil
}

// convertCommaDecimals rebuilds the known coordinate columns as float series.
// Both comma and dot decimals are accepted; unparseable values become zero.
func convertCommaDecimals(df dataframe.DataFrame) dataframe.DataFrame {
	for _, name := range commaDecimalColumns {
		if !hasColumn(df, name) {
			continue
		}
		records := df.Col(name).Records()
		floats := make([]float64, len(records))
		for i, rec := range records {
			floats[i] = parseLocaleFloat(rec)
		}
		df = df.Mutate(series.New(floats, series.Float, name))
	}
	return df
}

// parseLocaleFloat parses a decimal written with either a comma or a dot
// separator, returning 0 on failure.
func parseLocaleFloat(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// communityKeys derives the composite administrative key for every row,
// applying the city-state override.
func communityKeys(df dataframe.DataFrame, year int) ([]string, error) {
	fragments := make([][]string, 0, 4)
	for _, name := range []string{ColState, ColDistrict, ColCounty, ColMunicipality} {
		if !hasColumn(df, name) {
			return nil, &SchemaError{Year: year, Column: name}
		}
		fragments = append(fragments, df.Col(name).Records())
	}

	state, district, county, municipality := fragments[0], fragments[1], fragments[2], fragments[3]
	keys := make([]string, len(state))
	for i := range state {
		st := strings.TrimSpace(state[i])
		if cityStates[st] {
			keys[i] = st + "000000"
			continue
		}
		keys[i] = st + strings.TrimSpace(district[i]) + strings.TrimSpace(county[i]) + strings.TrimSpace(municipality[i])
	}
	return keys, nil
}

// dropDeprecated removes the deprecated columns that happen to be present.
func dropDeprecated(df dataframe.DataFrame) dataframe.DataFrame {
	dropped := make(map[string]bool, len(deprecatedColumns))
	for _, name := range deprecatedColumns {
		dropped[name] = true
	}

	keep := make([]string, 0, len(df.Names()))
	for _, name := range df.Names() {
		if !dropped[name] {
			keep = append(keep, name)
		}
	}
	if len(keep) == len(df.Names()) {
		return df
	}
	return df.Select(keep)
}

// applyRenames folds drifted raw headers into their canonical names. Renaming
// a table that already carries canonical names is a no-op, and a rename never
// clobbers an existing canonical column.
func applyRenames(df dataframe.DataFrame) dataframe.DataFrame {
	for _, rule := range renameRules {
		if !hasColumn(df, rule.raw) || hasColumn(df, rule.canonical) {
			continue
		}
		df = df.Rename(rule.canonical, rule.raw)
	}
	return df
}

// recordUIDs derives "{year}_{object id}" for every row. Object ids are only
// unique within one release; prefixing the year makes them corpus-unique.
func recordUIDs(df dataframe.DataFrame, year int) ([]string, error) {
	if !hasColumn(df, ColObjectID) {
		return nil, &SchemaError{Year: year, Column: ColObjectID}
	}
	oids := df.Col(ColObjectID).Records()
	uids := make([]string, len(oids))
	for i, oid := range oids {
		uids[i] = fmt.Sprintf("%d_%s", year, strings.TrimSpace(oid))
	}
	return uids, nil
}
