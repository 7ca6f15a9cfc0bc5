// Package jsonfile writes the enriched peak list as a pretty-printed JSON file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/fjell-etl/internal/domain"
)

// Writer serializes peaks to a fixed path.
// It implements pipeline.Loader.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a writer for the given output path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Load encodes all peaks and replaces the output file. The write is not
// atomic: a crash mid-write leaves a truncated file behind.
func (w *Writer) Load(ctx context.Context, peaks []domain.Peak) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(peaks)
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	w.logger.Info("output written", "path", w.path, "records", len(peaks), "bytes", len(data))
	return nil
}

// Encode renders peaks as a JSON array indented by two spaces. HTML
// characters are left unescaped so map URLs keep their literal ampersands,
// and no trailing newline is added. A nil slice encodes as [].
func Encode(peaks []domain.Peak) ([]byte, error) {
	if peaks == nil {
		peaks = []domain.Peak{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(peaks); err != nil {
		return nil, fmt.Errorf("encode peaks: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
