package domain

import "fmt"

// Supported release range of the Unfallatlas, inclusive.
const (
	FirstYear = 2016
	LastYear  = 2024
)

// SupportedYears returns all supported release years in ascending order.
func SupportedYears() []int {
	years := make([]int, 0, LastYear-FirstYear+1)
	for y := FirstYear; y <= LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// YearSupported reports whether year is a supported release.
func YearSupported(year int) bool {
	return year >= FirstYear && year <= LastYear
}

// ValidateYears returns a ConfigurationError listing every unsupported year
// in the request, or nil when all years are supported.
func ValidateYears(years []int) error {
	var bad []int
	for _, y := range years {
		if !YearSupported(y) {
			bad = append(bad, y)
		}
	}
	if len(bad) > 0 {
		return &ConfigurationError{Years: bad}
	}
	return nil
}

// DatasetFilename returns the remote archive name for a release year,
// e.g. "Unfallorte2020_EPSG25832_CSV.zip".
func DatasetFilename(year int) string {
	return fmt.Sprintf("Unfallorte%d_EPSG25832_CSV.zip", year)
}
