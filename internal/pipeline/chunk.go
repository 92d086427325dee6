package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/survey-cli/internal/model"
	"github.com/sells-group/survey-cli/internal/sheet"
)

// Structure-analysis sizing. The chunk budget is derived from the analysis
// model's input window at roughly four characters per token, minus a fixed
// allowance for the prompt scaffolding around the sheet metadata.
const (
	charsPerToken           = 4
	structureMaxInputTokens = 180000
	promptOverheadChars     = 1500
)

// DefaultChunkBudget is the character budget for one structure-analysis call.
func DefaultChunkBudget() int {
	return structureMaxInputTokens * charsPerToken
}

// EstimateSheetChars estimates the serialized size of one sheet's metadata
// as it will appear in the structure-analysis prompt. Only the sampled
// columns and rows are counted, so for wide or long sheets this is a lower
// bound on the true cell content, by construction.
func EstimateSheetChars(s model.SheetDescriptor) int {
	return len(renderSheetMetadata(s))
}

// ChunkSheets packs sheets into chunks greedily, preserving order and never
// splitting a sheet. A sheet too large for an empty chunk is emitted alone,
// over budget; truncation is the downstream caller's problem.
func ChunkSheets(sheets []model.SheetDescriptor, budget int) []model.Chunk {
	available := budget - promptOverheadChars
	var chunks []model.Chunk
	var cur model.Chunk

	for _, s := range sheets {
		cost := EstimateSheetChars(s)
		if len(cur.Sheets) > 0 && cur.EstimatedChars+cost > available {
			chunks = append(chunks, cur)
			cur = model.Chunk{}
		}
		cur.Sheets = append(cur.Sheets, s)
		cur.EstimatedChars += cost
	}
	if len(cur.Sheets) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}

// renderSheetMetadata serializes one sheet's metadata for the
// structure-analysis prompt. EstimateSheetChars counts exactly this text.
func renderSheetMetadata(s model.SheetDescriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nSheet: %s\n", s.Name)

	cols := s.Columns
	if len(cols) > sheet.MaxSampleCols {
		cols = cols[:sheet.MaxSampleCols]
	}
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(cols, ", "))
	fmt.Fprintf(&b, "Row count: %d\n", s.RowCount)

	if len(s.SampleRows) > 0 {
		b.WriteString("Sample rows:\n")
		for i, row := range s.SampleRows {
			// Sample rows start at sheet row 2, just under the header.
			fmt.Fprintf(&b, "  Row %d: %s\n", i+2, formatSampleRow(cols, row))
		}
	}

	return b.String()
}

// formatSampleRow renders one sample row as an ordered JSON-like object so
// the model sees column names next to values. Missing cells render as null.
func formatSampleRow(cols, row []string) string {
	var b strings.Builder
	b.WriteString("{")
	for i, col := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: ", col)
		if i < len(row) && strings.TrimSpace(row[i]) != "" {
			fmt.Fprintf(&b, "%q", row[i])
		} else {
			b.WriteString("null")
		}
	}
	b.WriteString("}")
	return b.String()
}
