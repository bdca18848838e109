package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modernCSV mimics a recent release: canonical headers throughout.
const modernCSV = `OID_;ULAND;UREGBEZ;UKREIS;UGEMEINDE;UJAHR;UKATEGORIE;ULICHTVERH;IstRad;IstPKW;IstSonstige;USTRZUSTAND;LINREFX;LINREFY;XGCSWGS84;YGCSWGS84
42;05;1;58;004;2020;3;0;1;1;0;0;370323,12;5713162,09;7,0843;51,5312
43;11;0;01;001;2020;2;1;0;1;0;1;392512,77;5820216,41;13,4013;52,5201
44;02;0;00;000;2020;3;2;0;1;1;0;565702,51;5934501,77;10,0012;53,5501
`

// legacyCSV mimics the 2016 release: drifted headers plus deprecated columns.
const legacyCSV = `OBJECTID;FID;PLST;UIDENTSTLA;ULAND;UREGBEZ;UKREIS;UGEMEINDE;UJAHR;UKATEGORIE;LICHT;IstSonstig;STRZUSTAND;XGCSWGS84;YGCSWGS84
1;9001;22;08115;08;1;16;033;2016;3;0;0;1;9,1012;48,7512
2;9002;23;05158;05;1;58;004;2016;2;1;1;0;7,0843;51,5312
`

func normalizeString(t *testing.T, csv string, year int) YearDataset {
	t.Helper()
	ds, err := NormalizeYearCSV(strings.NewReader(csv), year)
	require.NoError(t, err)
	return ds
}

func TestNormalizeYearCSV(t *testing.T) {
	t.Run("modern release passes through", func(t *testing.T) {
		ds := normalizeString(t, modernCSV, 2020)

		assert.Equal(t, 2020, ds.Year)
		assert.Equal(t, 3, ds.NumRecords())
		for _, name := range []string{ColObjectID, ColState, ColDistrict, ColCounty, ColMunicipality, ColCommunityKey, ColUID, "ULICHTVERH", "USTRZUSTAND", "IstSonstige"} {
			assert.True(t, ds.HasColumn(name), "expected column %s", name)
		}
	})

	t.Run("identifier columns keep leading zeros", func(t *testing.T) {
		ds := normalizeString(t, modernCSV, 2020)

		states, err := ds.Column(ColState)
		require.NoError(t, err)
		assert.Equal(t, []string{"05", "11", "02"}, states)

		municipalities, err := ds.Column(ColMunicipality)
		require.NoError(t, err)
		assert.Equal(t, []string{"004", "001", "000"}, municipalities)
	})

	t.Run("community key concatenates fragments", func(t *testing.T) {
		ds := normalizeString(t, modernCSV, 2020)

		keys, err := ds.Column(ColCommunityKey)
		require.NoError(t, err)
		assert.Equal(t, "05158004", keys[0])
	})

	t.Run("city states force the key", func(t *testing.T) {
		ds := normalizeString(t, modernCSV, 2020)

		keys, err := ds.Column(ColCommunityKey)
		require.NoError(t, err)
		// Berlin and Hamburg ignore district/county/municipality fragments.
		assert.Equal(t, "11000000", keys[1])
		assert.Equal(t, "02000000", keys[2])
	})

	t.Run("community keys are never empty", func(t *testing.T) {
		ds := normalizeString(t, modernCSV, 2020)

		keys, err := ds.Column(ColCommunityKey)
		require.NoError(t, err)
		for _, k := range keys {
			assert.NotEmpty(t, k)
		}
	})

	t.Run("uid prefixes the year", func(t *testing.T) {
		ds := normalizeString(t, modernCSV, 2020)

		uids, err := ds.Column(ColUID)
		require.NoError(t, err)
		assert.Equal(t, []string{"2020_42", "2020_43", "2020_44"}, uids)
	})

	t.Run("uids are unique", func(t *testing.T) {
		ds := normalizeString(t, modernCSV, 2020)

		uids, err := ds.Column(ColUID)
		require.NoError(t, err)
		seen := make(map[string]bool, len(uids))
		for _, uid := range uids {
			assert.False(t, seen[uid], "duplicate uid %s", uid)
			seen[uid] = true
		}
	})

	t.Run("comma decimals become floats", func(t *testing.T) {
		ds := normalizeString(t, modernCSV, 2020)

		lons := ds.Frame.Col("XGCSWGS84").Float()
		require.Len(t, lons, 3)
		assert.InDelta(t, 7.0843, lons[0], 1e-9)
		assert.InDelta(t, 13.4013, lons[1], 1e-9)

		lats := ds.Frame.Col("YGCSWGS84").Float()
		assert.InDelta(t, 51.5312, lats[0], 1e-9)
	})

	t.Run("loaded at uses the injected clock", func(t *testing.T) {
		fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(fixed))
		defer SetClock(nil)

		ds := normalizeString(t, modernCSV, 2020)
		assert.Equal(t, fixed, ds.LoadedAt)
	})

	t.Run("unsupported year fails before reading", func(t *testing.T) {
		_, err := NormalizeYearCSV(&failingReader{t: t}, 1900)

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []int{1900}, cfgErr.Years)
	})

	t.Run("missing state column", func(t *testing.T) {
		csv := "OID_;UREGBEZ;UKREIS;UGEMEINDE\n1;1;58;004\n"
		_, err := NormalizeYearCSV(strings.NewReader(csv), 2020)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, 2020, schemaErr.Year)
		assert.Equal(t, ColState, schemaErr.Column)
	})

	t.Run("missing object id column", func(t *testing.T) {
		csv := "ULAND;UREGBEZ;UKREIS;UGEMEINDE\n05;1;58;004\n"
		_, err := NormalizeYearCSV(strings.NewReader(csv), 2020)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, ColObjectID, schemaErr.Column)
	})
}

// failingReader fails the test if normalization touches the input at all.
type failingReader struct{ t *testing.T }

func (r *failingReader) Read([]byte) (int, error) {
	r.t.Fatal("input read for an unsupported year")
	return 0, nil
}

func TestNormalizeYearCSV_LegacyHeaders(t *testing.T) {
	ds := normalizeString(t, legacyCSV, 2016)

	t.Run("drifted headers fold into canonical names", func(t *testing.T) {
		for _, name := range []string{ColObjectID, "ULICHTVERH", "USTRZUSTAND", "IstSonstige"} {
			assert.True(t, ds.HasColumn(name), "expected canonical column %s", name)
		}
		for _, name := range []string{"OBJECTID", "LICHT", "STRZUSTAND", "IstSonstig"} {
			assert.False(t, ds.HasColumn(name), "raw column %s should be renamed", name)
		}
	})

	t.Run("deprecated columns are gone", func(t *testing.T) {
		for _, name := range []string{"FID", "PLST", "UIDENTSTLA", "UIDENTSTLAE"} {
			assert.False(t, ds.HasColumn(name), "column %s should be dropped", name)
		}
	})

	t.Run("uid derives from the renamed object id", func(t *testing.T) {
		uids, err := ds.Column(ColUID)
		require.NoError(t, err)
		assert.Equal(t, []string{"2016_1", "2016_2"}, uids)
	})
}

func TestNormalizeYearCSV_HeaderVariants(t *testing.T) {
	tests := []struct {
		name      string
		rawHeader string
		canonical string
	}{
		{"OBJECTID_1", "OBJECTID_1", ColObjectID},
		{"IstStrasse", "IstStrasse", "USTRZUSTAND"},
		{"IstStrassenzustand", "IstStrassenzustand", "USTRZUSTAND"},
		{"LICHT", "LICHT", "ULICHTVERH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := "OID_;ULAND;UREGBEZ;UKREIS;UGEMEINDE;" + tt.rawHeader
			if tt.canonical == ColObjectID {
				header = tt.rawHeader + ";ULAND;UREGBEZ;UKREIS;UGEMEINDE"
			}
			csv := header + "\n7;05;1;58;004;0\n"
			if tt.canonical == ColObjectID {
				csv = header + "\n7;05;1;58;004\n"
			}

			ds := normalizeString(t, csv, 2019)
			assert.True(t, ds.HasColumn(tt.canonical))
			assert.False(t, ds.HasColumn(tt.rawHeader))
		})
	}
}

func TestNormalizeYearCSV_RenameIsIdempotent(t *testing.T) {
	first := normalizeString(t, modernCSV, 2020)
	// Feeding an already-canonical table through the rename rules again must
	// leave the column set untouched.
	assert.Equal(t, first.Frame.Names(), applyRenames(first.Frame).Names())
}

func TestNormalizeYearCSV_RenameNeverClobbers(t *testing.T) {
	// Both a raw variant and its canonical target present: the canonical
	// column wins and the raw one survives unrenamed.
	csv := `OID_;ULAND;UREGBEZ;UKREIS;UGEMEINDE;LICHT;ULICHTVERH
1;05;1;58;004;9;2
`
	ds := normalizeString(t, csv, 2021)

	assert.True(t, ds.HasColumn("ULICHTVERH"))
	assert.True(t, ds.HasColumn("LICHT"))

	light, err := ds.Column("ULICHTVERH")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, light)
}

func TestParseLocaleFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"comma decimal", "51,5312", 51.5312},
		{"dot decimal", "51.5312", 51.5312},
		{"integer", "370323", 370323},
		{"whitespace", " 7,08 ", 7.08},
		{"empty", "", 0},
		{"garbage", "n/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, parseLocaleFloat(tt.input), 1e-9)
		})
	}
}

func TestValidateYears(t *testing.T) {
	t.Run("all supported", func(t *testing.T) {
		assert.NoError(t, ValidateYears([]int{2016, 2020, 2024}))
	})

	t.Run("collects every offender", func(t *testing.T) {
		err := ValidateYears([]int{1900, 2018, 2031})

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []int{1900, 2031}, cfgErr.Years)
	})
}

func TestDatasetFilename(t *testing.T) {
	assert.Equal(t, "Unfallorte2020_EPSG25832_CSV.zip", DatasetFilename(2020))
}

func TestSupportedYears(t *testing.T) {
	years := SupportedYears()
	require.Len(t, years, 9)
	assert.Equal(t, 2016, years[0])
	assert.Equal(t, 2024, years[len(years)-1])
}
