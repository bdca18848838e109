package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cityInfoCSV = `city;area in km²;population;regional key
Berlin;891,7;3664088;1100000000000
Hamburg;755,2;1852478;0200000000000
München;310,7;1488202;0916200000162
Köln;405,0;1083498;0531500000315
Neustadt;12,5;4512;0733400000317
Neustadt;88,1;53264;0145300000103
`

func parseCityInfoString(t *testing.T) CityInfo {
	t.Helper()
	ci, err := ParseCityInfo(strings.NewReader(cityInfoCSV))
	require.NoError(t, err)
	return ci
}

func TestParseCityInfo(t *testing.T) {
	ci := parseCityInfoString(t)

	t.Run("area header renamed", func(t *testing.T) {
		assert.True(t, hasColumn(ci.Frame, ColArea))
		assert.False(t, hasColumn(ci.Frame, rawAreaColumn))
	})

	t.Run("area parsed with comma decimals", func(t *testing.T) {
		areas := ci.Frame.Col(ColArea).Float()
		require.Len(t, areas, 6)
		assert.InDelta(t, 891.7, areas[0], 1e-9)
	})

	t.Run("regional keys truncated", func(t *testing.T) {
		keys := ci.Frame.Col(ColRegionalKey).Records()
		assert.Equal(t, "110000000", keys[0])
		assert.Equal(t, "091620162", keys[2])
		for _, k := range keys {
			assert.Len(t, k, 9)
		}
	})

	t.Run("missing column rejected", func(t *testing.T) {
		_, err := ParseCityInfo(strings.NewReader("city;population\nBerlin;3664088\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing column")
	})
}

func TestTruncateRegionalKey(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"full code", "1100000000000", "110000000"},
		{"embedded segment dropped", "0916200000162", "091620162"},
		{"minimum length", "0123456789", "012349"},
		{"too short unchanged", "12345", "12345"},
		{"whitespace trimmed", " 1100000000000 ", "110000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateRegionalKey(tt.raw))
		})
	}
}

func TestRegionalKeyFor(t *testing.T) {
	ci := parseCityInfoString(t)

	t.Run("exact match", func(t *testing.T) {
		key, err := RegionalKeyFor(ci, "Berlin")
		require.NoError(t, err)
		assert.Equal(t, "110000000", key)
		assert.Len(t, key, 9)
	})

	t.Run("unknown city", func(t *testing.T) {
		_, err := RegionalKeyFor(ci, "Atlantis")

		var nfErr *NotFoundError
		require.ErrorAs(t, err, &nfErr)
		assert.Equal(t, "Atlantis", nfErr.City)
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, err := RegionalKeyFor(ci, "berlin")
		var nfErr *NotFoundError
		require.ErrorAs(t, err, &nfErr)
	})

	t.Run("ambiguous name", func(t *testing.T) {
		_, err := RegionalKeyFor(ci, "Neustadt")

		var ambErr *AmbiguityError
		require.ErrorAs(t, err, &ambErr)
		assert.Equal(t, 2, ambErr.Matches)
	})
}
