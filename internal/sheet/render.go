package sheet

import (
	"strconv"
	"strings"
)

// RenderTable renders selected columns of a row window as a markdown table.
// headers and indices are parallel: headers[i] is the display name for
// column indices[i]. startRow is the 1-based sheet row of rows[0] and is
// emitted as the leading Row column so the model can cite row numbers.
// Rows with no content in any selected column are omitted; an empty string
// means the window held nothing renderable.
func RenderTable(headers []string, indices []int, rows [][]string, startRow int) string {
	if len(indices) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("| Row |")
	for _, h := range headers {
		b.WriteString(" " + escapeCell(h) + " |")
	}
	b.WriteString("\n|-----|")
	for range headers {
		b.WriteString("-----|")
	}
	b.WriteString("\n")

	rendered := 0
	for i, row := range rows {
		cells := make([]string, len(indices))
		empty := true
		for j, idx := range indices {
			var v string
			if idx >= 0 && idx < len(row) {
				v = strings.TrimSpace(row[idx])
			}
			if v != "" {
				empty = false
			}
			cells[j] = escapeCell(truncateCell(v))
		}
		if empty {
			continue
		}
		b.WriteString("| " + strconv.Itoa(startRow+i) + " | " + strings.Join(cells, " | ") + " |\n")
		rendered++
	}

	if rendered == 0 {
		return ""
	}
	return b.String()
}

// escapeCell keeps cell text from breaking markdown table geometry.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	return s
}
