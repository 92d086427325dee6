package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenDispatchesByExtension(t *testing.T) {
	path := writeCSV(t, "survey.csv", "Question,Answer\nQ1,A1\n")
	wb, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"survey"}, wb.SheetNames())
}

func TestOpenUnsupportedExtension(t *testing.T) {
	_, err := Open("report.pdf")
	assert.Error(t, err)
}

func TestCSVListSheets(t *testing.T) {
	path := writeCSV(t, "intake.csv", strings.Join([]string{
		"Question,,Notes",
		"Do you smoke?,Yes,required",
		",,",
		"How old are you?,,",
	}, "\n")+"\n")

	wb, err := Open(path)
	require.NoError(t, err)

	sheets := wb.ListSheets()
	require.Len(t, sheets, 1)

	s := sheets[0]
	assert.Equal(t, "intake", s.Name)
	// Blank headers get positional placeholder names.
	assert.Equal(t, []string{"Question", "Unnamed: 1", "Notes"}, s.Columns)
	// The fully empty row does not count as data.
	assert.Equal(t, 2, s.RowCount)
	assert.Len(t, s.SampleRows, 3)
}

func TestCSVHeaderRowLiteral(t *testing.T) {
	path := writeCSV(t, "intake.csv", "Question,,Notes\nQ1,,n\n")
	wb, err := Open(path)
	require.NoError(t, err)

	// HeaderRow returns cells verbatim: no placeholder substitution.
	headers, err := wb.HeaderRow("intake", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Question", "", "Notes"}, headers)

	_, err = wb.HeaderRow("intake", 99)
	assert.Error(t, err)

	_, err = wb.HeaderRow("other", 1)
	assert.Error(t, err)
}

func TestCSVRowsRange(t *testing.T) {
	path := writeCSV(t, "intake.csv", "H\nr2\nr3\nr4\n")
	wb, err := Open(path)
	require.NoError(t, err)

	rows, err := wb.Rows("intake", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"r2"}, {"r3"}}, rows)

	// end <= 0 reads through the last row.
	rows, err = wb.Rows("intake", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"r3"}, {"r4"}}, rows)

	rows, err = wb.Rows("intake", 9, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCSVRowCountIgnoresTrailingBlanks(t *testing.T) {
	path := writeCSV(t, "intake.csv", "H\nr2\n,\n ,\n")
	wb, err := Open(path)
	require.NoError(t, err)

	n, err := wb.RowCount("intake")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSampleRowsBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString(strings.Repeat("h,", 14) + "h\n")
	for i := 0; i < 40; i++ {
		b.WriteString(strings.Repeat("v,", 14) + "v\n")
	}

	wb, err := Open(writeCSV(t, "wide.csv", b.String()))
	require.NoError(t, err)

	s := wb.ListSheets()[0]
	assert.Equal(t, 40, s.RowCount)
	require.Len(t, s.SampleRows, MaxSampleRows)
	assert.Len(t, s.SampleRows[0], MaxSampleCols)
}

func TestSampleCellsTruncated(t *testing.T) {
	long := strings.Repeat("x", MaxCellLength+50)
	wb, err := Open(writeCSV(t, "long.csv", "H\n"+long+"\n"))
	require.NoError(t, err)

	s := wb.ListSheets()[0]
	require.Len(t, s.SampleRows, 1)
	cell := s.SampleRows[0][0]
	assert.Len(t, cell, MaxCellLength+3)
	assert.True(t, strings.HasSuffix(cell, "..."))
}
