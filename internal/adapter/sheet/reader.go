// Package sheet loads peak rows from the spreadsheet export, either as a
// semicolon-delimited text file or directly from an Excel workbook.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/couchcryptid/fjell-etl/internal/domain"
)

// ErrNoHeader is returned when the source has no header row.
var ErrNoHeader = errors.New("source has no header row")

// rowReader is the row-at-a-time interface shared by encoding/csv, csvutil,
// and the workbook adapter.
type rowReader interface {
	Read() ([]string, error)
}

// Reader reads source rows from a file on disk.
// It implements pipeline.Extractor.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a loader for the given path. Files ending in .xlsx or
// .xlsm are read as workbooks; anything else as semicolon-delimited text.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Extract reads every data row of the source in file order.
func (r *Reader) Extract(ctx context.Context) ([]domain.SourceRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".xlsx", ".xlsm":
		rows, err := readWorkbook(r.path)
		if err != nil {
			return nil, err
		}
		return decodeRows(&sliceReader{rows: rows}, r.logger)
	default:
		f, err := os.Open(r.path)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		defer f.Close()
		return decodeRows(newCSVReader(f), r.logger)
	}
}

// newCSVReader configures encoding/csv for the spreadsheet export: semicolon
// delimiter, a leading byte order mark stripped, invalid UTF-8 replaced.
func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.Comma = ';'
	cr.LazyQuotes = true
	return cr
}

// decodeRows reads the header, maps Norwegian column names onto SourceRow
// aliases, and decodes the remaining rows. Named columns without an alias are
// kept on each row as Extra.
func decodeRows(src rowReader, logger *slog.Logger) ([]domain.SourceRow, error) {
	nr := &normalizingReader{r: src}

	header, err := nr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nr.width = len(header)

	aliased := make([]string, len(header))
	unnamed := make([]bool, len(header))
	var extra []string
	for i, name := range header {
		if name == "" {
			// Trailing delimiters leave unnamed columns; keep them distinct.
			aliased[i] = fmt.Sprintf("_column%d", i+1)
			unnamed[i] = true
			continue
		}
		alias, ok := domain.SourceColumns[name]
		if !ok {
			aliased[i] = name
			extra = append(extra, name)
			continue
		}
		aliased[i] = alias
	}
	if len(extra) > 0 {
		logger.Debug("passing through extra source columns", "columns", extra)
	}

	dec, err := csvutil.NewDecoder(nr, aliased...)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	rows := make([]domain.SourceRow, 0)
	for {
		var row domain.SourceRow
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode row %d: %w", len(rows)+1, err)
		}
		row.Extra = extraFields(header, unnamed, dec.Unused(), dec.Record())
		rows = append(rows, row)
	}

	logger.Debug("source decoded", "rows", len(rows), "columns", len(header))
	return rows, nil
}

// extraFields pairs the unused named columns with the current record's values.
// It returns nil when there are none.
func extraFields(header []string, unnamed []bool, unused []int, record []string) []domain.Field {
	var out []domain.Field
	for _, i := range unused {
		if unnamed[i] {
			continue
		}
		var value string
		if i < len(record) {
			value = record[i]
		}
		out = append(out, domain.Field{Key: header[i], Value: value})
	}
	return out
}

// normalizingReader trims and NFC-normalizes every cell, skips rows that are
// entirely blank, and pads short rows to the header width.
type normalizingReader struct {
	r     rowReader
	width int
}

func (n *normalizingReader) Read() ([]string, error) {
	for {
		record, err := n.r.Read()
		if err != nil {
			return nil, err
		}

		blank := true
		out := make([]string, max(len(record), n.width))
		for i, cell := range record {
			out[i] = norm.NFC.String(strings.TrimSpace(cell))
			if out[i] != "" {
				blank = false
			}
		}
		if blank && n.width > 0 {
			continue
		}
		return out, nil
	}
}
