// Command genmock generates deterministic synthetic Unfallatlas data: one
// CSV per supported year reproducing that release's real header drift, plus
// a city_info.csv reference table. With -zip it instead produces the
// Unfallorte{year}_EPSG25832_CSV.zip archives the fetch pipeline expects, so
// the full acquire-extract-relocate path can be exercised without touching
// the real mirror.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -rows 50
//	go run ./cmd/genmock -out mirror/ -zip
package main

import (
	"archive/zip"
	"bytes"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/unfallatlas/accident-data-etl/internal/domain"
)

// schemaProfile captures the header spelling a release shipped with. The
// normalizer must fold every one of these back into the canonical schema.
type schemaProfile struct {
	objectID   string
	light      string
	surface    string
	other      string
	deprecated []string
}

var profiles = map[int]schemaProfile{
	2016: {objectID: "OBJECTID", light: "LICHT", surface: "STRZUSTAND", other: "IstSonstig", deprecated: []string{"UIDENTSTLA"}},
	2017: {objectID: "OBJECTID", light: "LICHT", surface: "STRZUSTAND", other: "IstSonstig", deprecated: []string{"UIDENTSTLAE"}},
	2018: {objectID: "OBJECTID_1", light: "ULICHTVERH", surface: "STRZUSTAND", other: "IstSonstige", deprecated: []string{"FID"}},
	2019: {objectID: "OBJECTID", light: "ULICHTVERH", surface: "IstStrassenzustand", other: "IstSonstige", deprecated: []string{"PLST"}},
	2020: {objectID: "OID_", light: "ULICHTVERH", surface: "IstStrasse", other: "IstSonstige"},
	2021: {objectID: "OID_", light: "ULICHTVERH", surface: "USTRZUSTAND", other: "IstSonstige"},
	2022: {objectID: "OID_", light: "ULICHTVERH", surface: "USTRZUSTAND", other: "IstSonstige"},
	2023: {objectID: "OID_", light: "ULICHTVERH", surface: "USTRZUSTAND", other: "IstSonstige"},
	2024: {objectID: "OID_", light: "ULICHTVERH", surface: "USTRZUSTAND", other: "IstSonstige"},
}

// region is an administrative location accidents are scattered over.
// Includes both city-states so the community-key override gets data.
type region struct {
	state, district, county, municipality string
	lon, lat                              float64
}

var regions = []region{
	{"05", "1", "58", "004", 7.0843, 51.5312},  // Düsseldorf area
	{"05", "3", "15", "000", 6.9603, 50.9375},  // Köln
	{"08", "1", "16", "033", 9.1012, 48.7512},  // Stuttgart area
	{"09", "1", "62", "000", 11.5755, 48.1374}, // München
	{"11", "0", "01", "001", 13.4013, 52.5201}, // Berlin (city-state)
	{"02", "0", "00", "000", 10.0012, 53.5501}, // Hamburg (city-state)
}

type city struct {
	name       string
	area       string
	population int
	rawKey     string
}

var cities = []city{
	{"Berlin", "891,7", 3664088, "1100000000000"},
	{"Hamburg", "755,2", 1852478, "0200000000000"},
	{"München", "310,7", 1488202, "0916200000162"},
	{"Köln", "405,0", 1083498, "0531500000315"},
	{"Düsseldorf", "217,4", 620523, "0511100000111"},
	{"Stuttgart", "207,3", 630305, "0811100000111"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock", "output directory")
	rows := flag.Int("rows", 25, "accident rows per year")
	seed := flag.Int64("seed", 1, "random seed (fixed for reproducible fixtures)")
	asZip := flag.Bool("zip", false, "write Unfallorte{year}_EPSG25832_CSV.zip archives instead of bare CSVs")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))

	for _, year := range domain.SupportedYears() {
		content := yearCSV(rng, year, *rows)

		if *asZip {
			path := filepath.Join(*out, domain.DatasetFilename(year))
			if err := writeZip(path, fmt.Sprintf("csv/Unfallorte%d_LinRef.csv", year), content); err != nil {
				return fmt.Errorf("year %d: %w", year, err)
			}
			log.Printf("%d: %d rows -> %s", year, *rows, path)
			continue
		}

		path := filepath.Join(*out, fmt.Sprintf("%d.csv", year))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("year %d: %w", year, err)
		}
		log.Printf("%d: %d rows -> %s", year, *rows, path)
	}

	cityPath := filepath.Join(*out, "city_info.csv")
	if err := os.WriteFile(cityPath, []byte(cityInfoCSV()), 0o644); err != nil {
		return err
	}
	log.Printf("%d cities -> %s", len(cities), cityPath)
	return nil
}

func yearCSV(rng *rand.Rand, year, rows int) string {
	p := profiles[year]

	header := []string{p.objectID, "ULAND", "UREGBEZ", "UKREIS", "UGEMEINDE",
		"UJAHR", "UMONAT", "USTUNDE", "UWOCHENTAG", "UKATEGORIE", "UART", "UTYP1",
		p.light, "IstRad", "IstPKW", "IstFuss", "IstKrad", "IstGkfz", p.other,
		p.surface, "XGCSWGS84", "YGCSWGS84"}
	header = append(header, p.deprecated...)

	var b strings.Builder
	b.WriteString(strings.Join(header, ";"))
	b.WriteByte('\n')

	for i := 0; i < rows; i++ {
		r := regions[rng.Intn(len(regions))]
		fields := []string{
			fmt.Sprintf("%d", i+1),
			r.state, r.district, r.county, r.municipality,
			fmt.Sprintf("%d", year),
			fmt.Sprintf("%d", 1+rng.Intn(12)),
			fmt.Sprintf("%d", rng.Intn(24)),
			fmt.Sprintf("%d", 1+rng.Intn(7)),
			fmt.Sprintf("%d", 1+rng.Intn(3)),
			fmt.Sprintf("%d", rng.Intn(10)),
			fmt.Sprintf("%d", 1+rng.Intn(7)),
			fmt.Sprintf("%d", rng.Intn(3)),
			flag01(rng), flag01(rng), flag01(rng), flag01(rng), flag01(rng), flag01(rng),
			fmt.Sprintf("%d", rng.Intn(3)),
			commaFloat(r.lon + rng.Float64()*0.05),
			commaFloat(r.lat + rng.Float64()*0.05),
		}
		for _, d := range p.deprecated {
			fields = append(fields, deprecatedValue(rng, d, r))
		}
		b.WriteString(strings.Join(fields, ";"))
		b.WriteByte('\n')
	}
	return b.String()
}

func flag01(rng *rand.Rand) string {
	return fmt.Sprintf("%d", rng.Intn(2))
}

// commaFloat formats with the source's German comma decimal separator.
func commaFloat(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.4f", v), ".", ",")
}

func deprecatedValue(rng *rand.Rand, column string, r region) string {
	switch column {
	case "UIDENTSTLA", "UIDENTSTLAE":
		return r.state + r.district + r.county + r.municipality
	case "FID":
		return fmt.Sprintf("%d", 9000+rng.Intn(999))
	case "PLST":
		return fmt.Sprintf("%d", 10+rng.Intn(89))
	default:
		return "0"
	}
}

func cityInfoCSV() string {
	var b strings.Builder
	b.WriteString("city;area in km²;population;regional key\n")
	for _, c := range cities {
		fmt.Fprintf(&b, "%s;%s;%d;%s\n", c.name, c.area, c.population, c.rawKey)
	}
	return b.String()
}

func writeZip(path, entryName, content string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(entryName)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(content)); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
