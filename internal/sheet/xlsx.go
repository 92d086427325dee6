package sheet

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/survey-cli/internal/model"
)

// xlsxWorkbook reads .xlsx files via tealeg/xlsx. The whole file is loaded
// up front; survey workbooks are small enough that streaming is not worth it.
type xlsxWorkbook struct {
	file *xlsx.File
}

// OpenXLSX opens an Excel workbook.
func OpenXLSX(path string) (Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open xlsx")
	}
	return &xlsxWorkbook{file: f}, nil
}

func (w *xlsxWorkbook) SheetNames() []string {
	names := make([]string, len(w.file.Sheets))
	for i, s := range w.file.Sheets {
		names[i] = s.Name
	}
	return names
}

func (w *xlsxWorkbook) ListSheets() []model.SheetDescriptor {
	descs := make([]model.SheetDescriptor, 0, len(w.file.Sheets))
	for _, s := range w.file.Sheets {
		descs = append(descs, buildDescriptor(s.Name, sheetRows(s)))
	}
	return descs
}

func (w *xlsxWorkbook) HeaderRow(sheetName string, row int) ([]string, error) {
	s, err := w.sheet(sheetName)
	if err != nil {
		return nil, err
	}
	if row < 1 || row > len(s.Rows) {
		return nil, eris.Errorf("sheet: header row %d out of range for %q", row, sheetName)
	}
	return rowToStrings(s.Rows[row-1]), nil
}

func (w *xlsxWorkbook) Rows(sheetName string, start, end int) ([][]string, error) {
	s, err := w.sheet(sheetName)
	if err != nil {
		return nil, err
	}
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > len(s.Rows) {
		end = len(s.Rows)
	}
	if start > end {
		return nil, nil
	}
	rows := make([][]string, 0, end-start+1)
	for i := start - 1; i < end; i++ {
		rows = append(rows, rowToStrings(s.Rows[i]))
	}
	return rows, nil
}

func (w *xlsxWorkbook) RowCount(sheetName string) (int, error) {
	s, err := w.sheet(sheetName)
	if err != nil {
		return 0, err
	}
	for i := len(s.Rows) - 1; i >= 0; i-- {
		if !rowEmpty(rowToStrings(s.Rows[i])) {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (w *xlsxWorkbook) sheet(name string) (*xlsx.Sheet, error) {
	s, ok := w.file.Sheet[name]
	if !ok {
		return nil, eris.Errorf("sheet: %q not found", name)
	}
	return s, nil
}

func sheetRows(s *xlsx.Sheet) [][]string {
	rows := make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = rowToStrings(row)
	}
	return rows
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
