// Command validate performs integrity checks across every materialized
// Unfallatlas year and the city reference table: canonical schema presence,
// community key format, corpus-wide UID uniqueness, and reference-table
// sanity. Years that are not materialized yet are reported and skipped.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/unfallatlas/accident-data-etl/internal/adapter/csvstore"
	"github.com/unfallatlas/accident-data-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing materialized {year}.csv files and city_info.csv")
	flag.Parse()

	if code := run(*dataDir); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string) int {
	store := csvstore.New(dataDir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	fmt.Println("=== Unfallatlas Data Integrity Validation ===")
	fmt.Println()

	var years []int
	var missing []int
	for _, year := range domain.SupportedYears() {
		if store.IsMaterialized(year) {
			years = append(years, year)
		} else {
			missing = append(missing, year)
		}
	}
	if len(missing) > 0 {
		fmt.Printf("  Note: %d year(s) not materialized, skipping: %v\n", len(missing), missing)
	}
	if len(years) == 0 {
		fmt.Fprintln(os.Stderr, "FATAL: no materialized years found; run cmd/fetch first")
		return 1
	}

	datasets, err := store.LoadMany(years)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load years: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(datasets),
		validateCommunityKeys(datasets),
		validateUIDs(datasets),
		validateCityReference(store),
	}

	fmt.Println()
	allPassed := true
	totalRecords := 0
	for _, ds := range datasets {
		totalRecords += ds.NumRecords()
	}
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d across %d year(s)\n", totalRecords, len(datasets))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Canonical Schema ──
// Every harmonized table carries the canonical columns and none of the raw
// drift variants or deprecated columns.

func validateSchema(datasets map[int]domain.YearDataset) *phase {
	p := &phase{name: "Phase 1: Canonical Schema"}

	required := []string{
		domain.ColObjectID, domain.ColState, domain.ColDistrict,
		domain.ColCounty, domain.ColMunicipality,
		domain.ColCommunityKey, domain.ColUID,
	}
	forbidden := []string{
		"OBJECTID", "OBJECTID_1", "LICHT", "STRZUSTAND", "IstStrasse",
		"IstStrassenzustand", "IstSonstig", "FID", "PLST", "UIDENTSTLA", "UIDENTSTLAE",
	}

	for year, ds := range datasets {
		for _, col := range required {
			if !ds.HasColumn(col) {
				p.errorf("%d: missing canonical column %q", year, col)
			}
		}
		for _, col := range forbidden {
			if ds.HasColumn(col) {
				p.errorf("%d: raw or deprecated column %q survived normalization", year, col)
			}
		}
	}
	return p
}

// ── Phase 2: Community Keys ──

func validateCommunityKeys(datasets map[int]domain.YearDataset) *phase {
	p := &phase{name: "Phase 2: Community Keys"}

	for year, ds := range datasets {
		keys, err := ds.Column(domain.ColCommunityKey)
		if err != nil {
			p.errorf("%d: %v", year, err)
			continue
		}
		states, err := ds.Column(domain.ColState)
		if err != nil {
			p.errorf("%d: %v", year, err)
			continue
		}

		for i, key := range keys {
			if key == "" {
				p.errorf("%d row %d: empty community key", year, i)
				continue
			}
			if !digitsOnly(key) {
				p.errorf("%d row %d: community key %q contains non-digits", year, i, key)
			}
			state := states[i]
			if (state == "11" || state == "02") && key != state+"000000" {
				p.errorf("%d row %d: city-state %s has key %q, want %q", year, i, state, key, state+"000000")
			}
			if !strings.HasPrefix(key, state) {
				p.errorf("%d row %d: community key %q does not start with state %q", year, i, key, state)
			}
		}
	}
	return p
}

// ── Phase 3: UID Uniqueness ──
// UIDs must be unique across the whole corpus, not just within one year.

func validateUIDs(datasets map[int]domain.YearDataset) *phase {
	p := &phase{name: "Phase 3: UID Uniqueness"}

	seen := make(map[string]int)
	for year, ds := range datasets {
		uids, err := ds.Column(domain.ColUID)
		if err != nil {
			p.errorf("%d: %v", year, err)
			continue
		}
		prefix := fmt.Sprintf("%d_", year)
		for i, uid := range uids {
			if !strings.HasPrefix(uid, prefix) {
				p.errorf("%d row %d: uid %q lacks year prefix %q", year, i, uid, prefix)
			}
			if firstYear, dup := seen[uid]; dup {
				p.errorf("%d row %d: uid %q already seen in year %d", year, i, uid, firstYear)
				continue
			}
			seen[uid] = year
		}
	}
	return p
}

// ── Phase 4: City Reference ──

func validateCityReference(store *csvstore.Store) *phase {
	p := &phase{name: "Phase 4: City Reference"}

	ci, err := store.LoadCityInfo()
	if err != nil {
		p.errorf("load city info: %v", err)
		return p
	}

	cities := ci.Frame.Col(domain.ColCity).Records()
	keys := ci.Frame.Col(domain.ColRegionalKey).Records()
	populations := ci.Frame.Col(domain.ColPopulation).Records()

	nameCount := make(map[string]int, len(cities))
	for i, city := range cities {
		if city == "" {
			p.errorf("row %d: empty city name", i)
		}
		nameCount[city]++
		if keys[i] == "" {
			p.errorf("row %d (%s): empty regional key", i, city)
		} else if !digitsOnly(keys[i]) {
			p.errorf("row %d (%s): regional key %q contains non-digits", i, city, keys[i])
		}
		if populations[i] == "" || populations[i] == "0" {
			p.errorf("row %d (%s): implausible population %q", i, city, populations[i])
		}
	}

	for city, n := range nameCount {
		if n > 1 {
			p.errorf("city %q appears %d times; lookups by name are ambiguous", city, n)
		}
	}
	return p
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
