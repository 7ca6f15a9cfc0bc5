package sheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/fjell-etl/internal/domain"
)

// readWorkbook returns all rows of the first worksheet. Excel omits trailing
// empty cells, so rows may be shorter than the header.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	return rows, nil
}

// sliceReader serves in-memory rows through the rowReader interface.
type sliceReader struct {
	rows [][]string
	next int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}

// WriteWorkbook saves rows as a single-sheet workbook with the export's
// header, in the layout Extract reads back. Extra columns are taken from the
// first row; rows of one export share the same header.
func WriteWorkbook(path string, rows []domain.SourceRow) error {
	f := excelize.NewFile()
	defer f.Close()

	header := append([]string(nil), domain.SourceHeader...)
	if len(rows) > 0 {
		for _, field := range rows[0].Extra {
			header = append(header, field.Key)
		}
	}

	sheetName := f.GetSheetName(0)
	if err := setRow(f, sheetName, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheetName, i+2, row.Fields()); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheetName string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
