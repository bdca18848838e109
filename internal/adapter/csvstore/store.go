// Package csvstore reads the materialized data directory: the canonical
// per-year CSVs and the static city reference table.
package csvstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/unfallatlas/accident-data-etl/internal/domain"
)

// CityInfoFilename is the static reference table inside the data directory.
const CityInfoFilename = "city_info.csv"

// Store resolves paths under the data directory and loads harmonized tables.
type Store struct {
	dataDir string
	logger  *slog.Logger
}

// New creates a Store rooted at dataDir.
func New(dataDir string, logger *slog.Logger) *Store {
	return &Store{dataDir: dataDir, logger: logger}
}

// YearPath returns the canonical per-year CSV location.
func (s *Store) YearPath(year int) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%d.csv", year))
}

// ArchivePath returns where the year's downloaded zip lives before extraction.
func (s *Store) ArchivePath(year int) string {
	return filepath.Join(s.dataDir, domain.DatasetFilename(year))
}

// CityInfoPath returns the city reference table location.
func (s *Store) CityInfoPath() string {
	return filepath.Join(s.dataDir, CityInfoFilename)
}

// IsMaterialized reports whether the year's canonical CSV already exists.
func (s *Store) IsMaterialized(year int) bool {
	_, err := os.Stat(s.YearPath(year))
	return err == nil
}

// Normalize loads and harmonizes one year. The year is validated before any
// file I/O, and the table is re-derived from disk on every call.
func (s *Store) Normalize(year int) (domain.YearDataset, error) {
	if err := domain.ValidateYears([]int{year}); err != nil {
		return domain.YearDataset{}, err
	}

	f, err := os.Open(s.YearPath(year))
	if err != nil {
		return domain.YearDataset{}, fmt.Errorf("open year %d data: %w", year, err)
	}
	defer f.Close()

	ds, err := domain.NormalizeYearCSV(f, year)
	if err != nil {
		return domain.YearDataset{}, err
	}

	s.logger.Debug("year normalized", "year", year, "records", ds.NumRecords())
	return ds, nil
}

// LoadMany normalizes every requested year. The full request is validated
// upfront so a ConfigurationError names every offending year, and a failure
// on any year returns no partial results.
func (s *Store) LoadMany(years []int) (map[int]domain.YearDataset, error) {
	if err := domain.ValidateYears(years); err != nil {
		return nil, err
	}

	datasets := make(map[int]domain.YearDataset, len(years))
	for _, year := range years {
		ds, err := s.Normalize(year)
		if err != nil {
			return nil, err
		}
		datasets[year] = ds
	}
	return datasets, nil
}

// LoadCityInfo parses the static city reference table.
func (s *Store) LoadCityInfo() (domain.CityInfo, error) {
	f, err := os.Open(s.CityInfoPath())
	if err != nil {
		return domain.CityInfo{}, fmt.Errorf("open city info: %w", err)
	}
	defer f.Close()

	return domain.ParseCityInfo(f)
}
