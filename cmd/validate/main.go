// Command validate performs integrity checks on a written fjell.json: schema
// shape, uid derivation, coordinate conversion, map links, and (optionally)
// row parity with the source export it was produced from.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -output fjell.json \
//	  -source fjell.csv \
//	  -zone 32V
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/fjell-etl/internal/adapter/sheet"
	"github.com/couchcryptid/fjell-etl/internal/domain"
)

var placeholderKeys = []string{"group", "county", "commune", "nationalPark"}

var fiveDecimalsRe = regexp.MustCompile(`^-?\d+\.\d{5}$`)

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
	outputPath := flag.String("output", "fjell.json", "path to the written peak JSON")
	sourcePath := flag.String("source", "", "optional source export (.csv or .xlsx) for row parity checks")
	zoneFlag := flag.String("zone", domain.DefaultZone.String(), "UTM zone the output was converted with, e.g. 32V")
	flag.Parse()

	zone, err := parseZone(*zoneFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -zone: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if code := run(os.Stdout, *outputPath, *sourcePath, zone); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, outputPath, sourcePath string, zone domain.Zone) int {
	fmt.Fprintln(w, "=== Peak List Integrity Validation ===")
	fmt.Fprintln(w)

	raw, peaks, err := loadOutput(outputPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load output: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(raw),
		validateIdentifiers(w, peaks),
		validateCoordinates(peaks, zone),
		validateLinks(peaks),
	}

	if sourcePath != "" {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		rows, err := sheet.NewReader(sourcePath, logger).Extract(context.Background())
		if err != nil {
			fmt.Fprintf(w, "FATAL: load source: %v\n", err)
			return 1
		}
		phases = append(phases, validateSourceParity(rows, raw, peaks))
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-36s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d\n", len(peaks))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// parseZone reads a zone such as "32V" into its number and band letter.
func parseZone(s string) (domain.Zone, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return domain.Zone{}, fmt.Errorf("%q is too short", s)
	}
	letter := s[len(s)-1:]
	number, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || number < 1 || number > 60 {
		return domain.Zone{}, fmt.Errorf("%q: zone number must be 1-60", s)
	}
	if !strings.Contains(domain.ZoneLetters, letter) {
		return domain.Zone{}, fmt.Errorf("%q: band letter must be one of %s", s, domain.ZoneLetters)
	}
	return domain.Zone{Number: number, Letter: letter}, nil
}

// loadOutput decodes the output twice: as generic maps for key checks and as
// typed peaks for value checks.
func loadOutput(path string) ([]map[string]json.RawMessage, []domain.Peak, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	var peaks []domain.Peak
	if err := json.Unmarshal(data, &peaks); err != nil {
		return nil, nil, err
	}
	return raw, peaks, nil
}

// ── Phase 1: Schema ──
// Every record carries the output keys with null placeholders. Extra source
// columns may sit alongside them; untranslated or unnamed columns may not.

func validateSchema(raw []map[string]json.RawMessage) *phase {
	p := &phase{name: "Phase 1: Schema"}

	for i, rec := range raw {
		for _, key := range domain.OutputKeys {
			if _, ok := rec[key]; !ok {
				p.errorf("record %d: missing key %q", i, key)
			}
		}
		for key := range rec {
			if _, norwegian := domain.SourceColumns[key]; norwegian {
				p.errorf("record %d: source field %q was not translated", i, key)
			} else if strings.HasPrefix(key, "_column") {
				p.errorf("record %d: unnamed column %q was written", i, key)
			}
		}
		for _, key := range placeholderKeys {
			if v, ok := rec[key]; ok && string(v) != "null" {
				p.errorf("record %d: %s must be null, got %s", i, key, v)
			}
		}
	}
	return p
}

// ── Phase 2: Identifiers ──
// uid must be the SHA-256 of the trimmed UTM text. Shared uids are allowed
// (same position listed twice) and only reported.

func validateIdentifiers(w io.Writer, peaks []domain.Peak) *phase {
	p := &phase{name: "Phase 2: Identifiers"}

	seen := map[string]int{}
	var dupes int
	for i := range peaks {
		want, err := domain.ComputeUID(peaks[i].Coordinates.UTM)
		if err != nil {
			p.errorf("record %d (%s): %v", i, peaks[i].Name, err)
			continue
		}
		if peaks[i].UID != want {
			p.errorf("record %d (%s): uid %q, expected %q", i, peaks[i].Name, peaks[i].UID, want)
		}
		if first, ok := seen[peaks[i].UID]; ok {
			dupes++
			fmt.Fprintf(w, "  Note: record %d (%s) shares uid with record %d\n", i, peaks[i].Name, first)
			continue
		}
		seen[peaks[i].UID] = i
	}

	if dupes > 0 {
		fmt.Fprintf(w, "  Note: %d duplicate uid(s) found\n", dupes)
	}
	return p
}

// ── Phase 3: Coordinates ──
// Decimal coordinates must be five-decimal strings matching a fresh conversion.

func validateCoordinates(peaks []domain.Peak, zone domain.Zone) *phase {
	p := &phase{name: "Phase 3: Coordinates"}

	for i := range peaks {
		c := peaks[i].Coordinates
		if c.Latitude == nil || c.Longitude == nil {
			p.errorf("record %d (%s): decimal coordinates missing", i, peaks[i].Name)
			continue
		}
		if !fiveDecimalsRe.MatchString(*c.Latitude) || !fiveDecimalsRe.MatchString(*c.Longitude) {
			p.errorf("record %d (%s): coordinates %s, %s are not five-decimal numbers", i, peaks[i].Name, *c.Latitude, *c.Longitude)
			continue
		}

		converted, err := domain.ConvertCoordinates(domain.Peak{Coordinates: domain.Coordinates{UTM: c.UTM}}, zone)
		if err != nil {
			p.errorf("record %d (%s): %v", i, peaks[i].Name, err)
			continue
		}
		if *converted.Coordinates.Latitude != *c.Latitude || *converted.Coordinates.Longitude != *c.Longitude {
			p.errorf("record %d (%s): coordinates %s, %s; expected %s, %s from %q", i, peaks[i].Name,
				*c.Latitude, *c.Longitude,
				*converted.Coordinates.Latitude, *converted.Coordinates.Longitude, c.UTM)
		}
	}
	return p
}

// ── Phase 4: Links ──

func validateLinks(peaks []domain.Peak) *phase {
	p := &phase{name: "Phase 4: Map links"}

	for i := range peaks {
		if want := domain.AddNorgesKart(peaks[i]).NorgesKart; peaks[i].NorgesKart != want {
			p.errorf("record %d (%s): norgesKart %q, expected %q", i, peaks[i].Name, peaks[i].NorgesKart, want)
		}
		if want := domain.AddGaiaGPS(peaks[i]).GaiaGPS; peaks[i].GaiaGPS != want {
			p.errorf("record %d (%s): gaiaGPS %q, expected %q", i, peaks[i].Name, peaks[i].GaiaGPS, want)
		}
	}
	return p
}

// ── Phase 5: Source parity ──
// The output must hold one record per source row, in source order, with the
// extra source columns carried over verbatim.

func validateSourceParity(rows []domain.SourceRow, raw []map[string]json.RawMessage, peaks []domain.Peak) *phase {
	p := &phase{name: "Phase 5: Source parity"}

	if len(rows) != len(peaks) {
		p.errorf("source has %d rows, output has %d records", len(rows), len(peaks))
		return p
	}
	for i := range rows {
		want := domain.Translate(rows[i])
		if peaks[i].Name != want.Name || peaks[i].MASL != want.MASL || peaks[i].Map != want.Map ||
			peaks[i].Coordinates.DMS != want.Coordinates.DMS || peaks[i].Coordinates.UTM != want.Coordinates.UTM {
			p.errorf("row %d: output record %q does not match source row %q", i+1, peaks[i].Name, rows[i].Name)
		}
		for _, f := range want.Extra {
			var got string
			if err := json.Unmarshal(raw[i][f.Key], &got); err != nil || got != f.Value {
				p.errorf("row %d (%s): column %q is %s, expected %q", i+1, rows[i].Name, f.Key, raw[i][f.Key], f.Value)
			}
		}
	}
	return p
}
