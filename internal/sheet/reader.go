package sheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/survey-cli/internal/model"
)

// Truncation limits applied when building sheet metadata samples.
const (
	MaxSampleCols = 10
	MaxSampleRows = 30
	MaxCellLength = 200
)

// Workbook provides two views of one spreadsheet file: a metadata view used
// for structure analysis, and row-accurate cell access used for rendering
// extraction batches. The two views deliberately follow different column
// naming conventions. ListSheets names blank headers "Unnamed: N" (zero-based
// position) while HeaderRow returns header cells verbatim; reconciling the
// two is the column resolver's job.
type Workbook interface {
	// SheetNames returns sheet names in file order.
	SheetNames() []string

	// ListSheets returns the metadata view of every sheet: first-row column
	// names, data row count, and a bounded sample of rows.
	ListSheets() []model.SheetDescriptor

	// HeaderRow returns the literal cell text of the given 1-based row.
	HeaderRow(sheetName string, row int) ([]string, error)

	// Rows returns rows start..end inclusive (1-based). An end of 0 or less
	// reads through the last row.
	Rows(sheetName string, start, end int) ([][]string, error)

	// RowCount returns the index of the last row with any content.
	RowCount(sheetName string) (int, error)
}

// Open opens a workbook, choosing the reader by file extension.
func Open(path string) (Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return OpenXLSX(path)
	case ".csv":
		return OpenCSV(path)
	default:
		return nil, eris.Errorf("sheet: unsupported file type %q", filepath.Ext(path))
	}
}

// buildDescriptor assembles the metadata view of one sheet from its raw
// rows. The first row supplies column names; blank headers become positional
// placeholders so downstream consumers always have a name per column.
func buildDescriptor(name string, rows [][]string) model.SheetDescriptor {
	desc := model.SheetDescriptor{Name: name}
	if len(rows) == 0 {
		return desc
	}

	desc.Columns = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = placeholderName(i)
		}
		desc.Columns[i] = h
	}

	for _, row := range rows[1:] {
		if !rowEmpty(row) {
			desc.RowCount++
		}
	}

	sampleEnd := len(rows)
	if sampleEnd > MaxSampleRows+1 {
		sampleEnd = MaxSampleRows + 1
	}
	for _, row := range rows[1:sampleEnd] {
		desc.SampleRows = append(desc.SampleRows, sampleCells(row))
	}

	return desc
}

// placeholderName is the metadata reader's name for a blank header at
// zero-based position i.
func placeholderName(i int) string {
	return fmt.Sprintf("Unnamed: %d", i)
}

func sampleCells(row []string) []string {
	n := len(row)
	if n > MaxSampleCols {
		n = MaxSampleCols
	}
	cells := make([]string, n)
	for i := 0; i < n; i++ {
		cells[i] = truncateCell(row[i])
	}
	return cells
}

func truncateCell(s string) string {
	if len(s) > MaxCellLength {
		return s[:MaxCellLength] + "..."
	}
	return s
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

