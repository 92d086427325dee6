package pipeline

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/survey-cli/internal/model"
	"github.com/sells-group/survey-cli/internal/sheet"
)

// Row batching bounds. Sheets that would need more than maxBatchesPerSheet
// windows are truncated with a warning rather than failed. The gap limit
// and lookahead cap bound the continuation scan on sparse sheets.
const (
	maxRowsPerBatch       = 100
	maxBatchesPerSheet    = 20
	continuationGapLimit  = 2
	continuationLookahead = 15
)

// rowClass is the continuation scanner's classification of one data row.
type rowClass int

const (
	rowGap rowClass = iota
	rowNewQuestion
	rowContinuation
)

// classifyRow inspects the resolved question and answer cells. A row with
// question text starts a new question; a row with only answer text extends
// the previous question's options; everything else is a gap.
func classifyRow(row []string, rc model.ResolvedColumns) rowClass {
	if cellAt(row, rc.Index(model.RoleQuestion)) != "" {
		return rowNewQuestion
	}
	if cellAt(row, rc.Index(model.RoleAnswer)) != "" ||
		cellAt(row, rc.Index(model.RoleAnswerOptions)) != "" {
		return rowContinuation
	}
	return rowGap
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// answerAt returns the row's answer text, preferring the dedicated options
// column over the answer column.
func answerAt(row []string, rc model.ResolvedColumns) string {
	if v := cellAt(row, rc.Index(model.RoleAnswerOptions)); v != "" {
		return v
	}
	return cellAt(row, rc.Index(model.RoleAnswer))
}

// ScanQuestionGroups walks data rows and groups each question row with the
// answer options supplied by its continuation rows. firstRowNum is the
// 1-based sheet row of rows[0].
//
// From each question row the scan looks ahead, collecting continuation rows
// and tolerating up to continuationGapLimit fully-empty rows between them.
// A new question row, exceeding the gap limit, or reaching the lookahead
// cap closes the group.
func ScanQuestionGroups(rows [][]string, firstRowNum int, rc model.ResolvedColumns) []model.QuestionGroup {
	var groups []model.QuestionGroup

	for i := 0; i < len(rows); i++ {
		if classifyRow(rows[i], rc) != rowNewQuestion {
			continue
		}

		g := model.QuestionGroup{
			Row:    firstRowNum + i,
			EndRow: firstRowNum + i,
			Text:   cellAt(rows[i], rc.Index(model.RoleQuestion)),
		}
		if opt := answerAt(rows[i], rc); opt != "" {
			g.Options = append(g.Options, opt)
		}

		gap := 0
	scan:
		for j := i + 1; j < len(rows) && j-i <= continuationLookahead; j++ {
			switch classifyRow(rows[j], rc) {
			case rowNewQuestion:
				break scan
			case rowContinuation:
				gap = 0
				g.Options = append(g.Options, answerAt(rows[j], rc))
				g.EndRow = firstRowNum + j
			case rowGap:
				gap++
				if gap > continuationGapLimit {
					break scan
				}
			}
		}

		groups = append(groups, g)
	}

	return groups
}

// BatchRows splits one sheet's data rows into fixed-size windows rendered
// for extraction calls. Windows with no renderable content are skipped;
// every non-empty data row lands in exactly one batch, in row order.
//
// Question groups are scanned per window, so a group whose continuation
// rows straddle a window boundary is reported without its tail options.
// The hints are a bounded approximation; the rendered tables still carry
// every row, and the extraction prompt's continuation rule covers the
// boundary case.
func BatchRows(wb sheet.Workbook, st model.SheetStructure, rc model.ResolvedColumns) ([]model.RowBatch, error) {
	lastRow, err := wb.RowCount(st.SheetName)
	if err != nil {
		return nil, err
	}

	start := st.DataStartRow
	if start < 1 {
		start = 2
	}
	if start > lastRow {
		return nil, nil
	}

	total := (lastRow - start + maxRowsPerBatch) / maxRowsPerBatch
	if total > maxBatchesPerSheet {
		zap.L().Warn("pipeline: sheet exceeds batch cap, truncating",
			zap.String("sheet", st.SheetName),
			zap.Int("batches", total),
			zap.Int("cap", maxBatchesPerSheet),
		)
		total = maxBatchesPerSheet
	}

	headers, indices := renderColumns(rc)

	var batches []model.RowBatch
	for n := 0; n < total; n++ {
		winStart := start + n*maxRowsPerBatch
		winEnd := winStart + maxRowsPerBatch - 1
		if winEnd > lastRow {
			winEnd = lastRow
		}

		rows, err := wb.Rows(st.SheetName, winStart, winEnd)
		if err != nil {
			return nil, err
		}

		table := sheet.RenderTable(headers, indices, rows, winStart)
		if table == "" {
			continue
		}

		batches = append(batches, model.RowBatch{
			SheetName:    st.SheetName,
			Table:        table,
			Roles:        rc,
			Groups:       ScanQuestionGroups(rows, winStart, rc),
			StartRow:     winStart,
			EndRow:       winEnd,
			BatchNum:     n + 1,
			TotalBatches: total,
		})
	}

	return batches, nil
}
