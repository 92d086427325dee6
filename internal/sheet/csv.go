package sheet

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/survey-cli/internal/model"
)

// csvWorkbook adapts a CSV file to the Workbook interface as a single sheet
// named after the file stem.
type csvWorkbook struct {
	name string
	rows [][]string
}

// OpenCSV opens a CSV file as a one-sheet workbook.
func OpenCSV(path string) (Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open csv")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "sheet: read csv")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &csvWorkbook{name: name, rows: rows}, nil
}

func (w *csvWorkbook) SheetNames() []string {
	return []string{w.name}
}

func (w *csvWorkbook) ListSheets() []model.SheetDescriptor {
	return []model.SheetDescriptor{buildDescriptor(w.name, w.rows)}
}

func (w *csvWorkbook) HeaderRow(sheetName string, row int) ([]string, error) {
	if err := w.check(sheetName); err != nil {
		return nil, err
	}
	if row < 1 || row > len(w.rows) {
		return nil, eris.Errorf("sheet: header row %d out of range for %q", row, sheetName)
	}
	return w.rows[row-1], nil
}

func (w *csvWorkbook) Rows(sheetName string, start, end int) ([][]string, error) {
	if err := w.check(sheetName); err != nil {
		return nil, err
	}
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > len(w.rows) {
		end = len(w.rows)
	}
	if start > end {
		return nil, nil
	}
	return w.rows[start-1 : end], nil
}

func (w *csvWorkbook) RowCount(sheetName string) (int, error) {
	if err := w.check(sheetName); err != nil {
		return 0, err
	}
	for i := len(w.rows) - 1; i >= 0; i-- {
		if !rowEmpty(w.rows[i]) {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (w *csvWorkbook) check(sheetName string) error {
	if sheetName != w.name {
		return eris.Errorf("sheet: %q not found", sheetName)
	}
	return nil
}
