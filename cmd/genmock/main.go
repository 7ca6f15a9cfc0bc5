// Command genmock builds test fixtures from a peak list export. It runs the
// export through the real loader and transform steps and writes a golden
// fjell.json, and optionally a workbook copy of the source rows so the .xlsx
// loader path can be tested against the same data.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -source fjell.csv \
//	  -json-out testdata/fjell.golden.json \
//	  -xlsx-out testdata/fjell.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/fjell-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/fjell-etl/internal/adapter/sheet"
	"github.com/couchcryptid/fjell-etl/internal/domain"
	"github.com/couchcryptid/fjell-etl/internal/observability"
	"github.com/couchcryptid/fjell-etl/internal/pipeline"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("genmock", flag.ContinueOnError)
	source := fs.String("source", "", "peak list export (.csv or .xlsx)")
	jsonOut := fs.String("json-out", "", "output path for the golden JSON fixture")
	xlsxOut := fs.String("xlsx-out", "", "optional output path for a workbook copy of the source")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *source == "" || *jsonOut == "" {
		fs.Usage()
		return errors.New("missing required flags: -source, -json-out")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rows, err := sheet.NewReader(*source, logger).Extract(ctx)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *source, err)
	}
	fmt.Fprintf(w, "source: %d rows\n", len(rows))

	if *xlsxOut != "" {
		if err := mkdirFor(*xlsxOut); err != nil {
			return err
		}
		if err := sheet.WriteWorkbook(*xlsxOut, rows); err != nil {
			return fmt.Errorf("writing workbook fixture: %w", err)
		}
		fmt.Fprintf(w, "wrote workbook fixture: %s\n", *xlsxOut)
	}

	tfm := pipeline.NewTransformer(domain.DefaultZone, false, logger, observability.NewMetrics())
	peaks, err := tfm.Transform(ctx, rows)
	if err != nil {
		return fmt.Errorf("transforming: %w", err)
	}

	if err := mkdirFor(*jsonOut); err != nil {
		return err
	}
	if err := jsonfile.NewWriter(*jsonOut, logger).Load(ctx, peaks); err != nil {
		return fmt.Errorf("writing JSON fixture: %w", err)
	}
	fmt.Fprintf(w, "wrote JSON fixture: %s\n", *jsonOut)

	printStats(w, peaks)
	return nil
}

func mkdirFor(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// statsResult holds aggregated values for printStats reporting.
type statsResult struct {
	total          int
	invalidCoords  int
	duplicateUIDs  int
	highest        string
	highestMASL    int
	minLat, maxLat float64
	minLon, maxLon float64
}

func collectStats(peaks []domain.Peak) statsResult {
	s := statsResult{
		total:  len(peaks),
		minLat: math.Inf(1), maxLat: math.Inf(-1),
		minLon: math.Inf(1), maxLon: math.Inf(-1),
	}
	seen := map[string]bool{}
	for i := range peaks {
		p := &peaks[i]
		if seen[p.UID] {
			s.duplicateUIDs++
		}
		seen[p.UID] = true

		if masl, err := strconv.Atoi(p.MASL); err == nil && masl > s.highestMASL {
			s.highestMASL = masl
			s.highest = p.Name
		}

		lat, latErr := strconv.ParseFloat(deref(p.Coordinates.Latitude), 64)
		lon, lonErr := strconv.ParseFloat(deref(p.Coordinates.Longitude), 64)
		if latErr != nil || lonErr != nil || math.IsNaN(lat) || math.IsNaN(lon) {
			s.invalidCoords++
			continue
		}
		s.minLat, s.maxLat = math.Min(s.minLat, lat), math.Max(s.maxLat, lat)
		s.minLon, s.maxLon = math.Min(s.minLon, lon), math.Max(s.maxLon, lon)
	}
	return s
}

func printStats(w io.Writer, peaks []domain.Peak) {
	s := collectStats(peaks)

	fmt.Fprintln(w, "\n=== Stats for updating test assertions ===")
	fmt.Fprintf(w, "Total: %d\n", s.total)
	fmt.Fprintf(w, "Invalid coordinates: %d\n", s.invalidCoords)
	fmt.Fprintf(w, "Duplicate uids: %d\n", s.duplicateUIDs)
	if s.highest != "" {
		fmt.Fprintf(w, "Highest: %s (%d moh)\n", s.highest, s.highestMASL)
	}
	if s.total > s.invalidCoords {
		fmt.Fprintf(w, "Bounds: lat %.5f..%.5f, lon %.5f..%.5f\n", s.minLat, s.maxLat, s.minLon, s.maxLon)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
