package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/survey-cli/internal/config"
	"github.com/sells-group/survey-cli/internal/model"
	"github.com/sells-group/survey-cli/internal/sheet"
	"github.com/sells-group/survey-cli/pkg/anthropic"
)

const extractionPromptHeader = `Extract every survey question from the table below.

Rules:
- A row with question text starts a new question. A row with only answer
  text continues the previous question's answer options; never emit it as a
  separate question.
- Keep questions in row order. Use the Row value from the table for the row
  attribute.
- Detect conditional logic in question or instruction text ("if yes, ...",
  "skip to ...") and emit it as dependencies and conditional inputs.
- type is one of: open_ended, single_choice, multiple_choice, yes_no,
  numeric, integer, decimal, grouped.

Respond with ONLY this XML:
<questions>
  <q type="..." seq="1" row="..." sheet="...">
    <text>question text</text>
    <help_text>optional help text</help_text>
    <answers>
      <option>option text</option>
    </answers>
    <conditional_inputs>
      <input answer="Yes">follow-up prompt shown for that answer</input>
    </conditional_inputs>
    <dependencies>
      <depends_on question_row="..." answer_value="..." condition_type="equals|contains|not_empty" action="show|skip" original_text="..."/>
    </dependencies>
  </q>
</questions>

Omit empty child elements. If the table holds no questions, respond with an
empty <questions></questions>.
`

// sheetAttrPattern rewrites whatever the model put in the sheet attribute.
// Models drift on sheet naming mid-response, so the known sheet name is
// forced back in before batches are combined.
var sheetAttrPattern = regexp.MustCompile(`sheet="[^"]*"`)

// BuildBatches resolves each analyzed sheet's columns against the
// row-accurate headers and windows its data rows. Sheets whose question
// column cannot be resolved are skipped with a warning.
func BuildBatches(wb sheet.Workbook, structure model.StructureInfo) ([]model.RowBatch, error) {
	var batches []model.RowBatch

	for _, st := range structure.Sheets {
		headers, err := wb.HeaderRow(st.SheetName, st.HeaderRow)
		if err != nil {
			zap.L().Warn("pipeline: header row unreadable, skipping sheet",
				zap.String("sheet", st.SheetName), zap.Error(err))
			continue
		}

		rc, err := ResolveColumns(st.SheetName, st.Columns, headers)
		if err != nil {
			zap.L().Warn("pipeline: skipping sheet",
				zap.String("sheet", st.SheetName), zap.Error(err))
			continue
		}

		sheetBatches, err := BatchRows(wb, st, rc)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: batch rows for %s", st.SheetName)
		}
		batches = append(batches, sheetBatches...)
	}

	return batches, nil
}

// BuildExtractionPrompt renders the extraction prompt for one batch.
func BuildExtractionPrompt(batch model.RowBatch) string {
	var b strings.Builder
	b.WriteString(extractionPromptHeader)

	fmt.Fprintf(&b, "\nSheet: %s (batch %d of %d, rows %d-%d)\n",
		batch.SheetName, batch.BatchNum, batch.TotalBatches, batch.StartRow, batch.EndRow)

	if len(batch.Groups) > 0 {
		b.WriteString("Answer groups detected by row scan (question row: option rows):\n")
		for _, g := range batch.Groups {
			if g.EndRow > g.Row {
				fmt.Fprintf(&b, "- row %d spans options through row %d (%d options)\n",
					g.Row, g.EndRow, len(g.Options))
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(batch.Table)
	return b.String()
}

// ExtractQuestions runs the extraction call for every batch sequentially
// and combines the per-batch question blocks under one root, in batch
// order. A batch whose response holds no questions block contributes
// nothing. Returns an error only when the combined output is empty, which
// is fatal to the run.
func ExtractQuestions(ctx context.Context, client anthropic.Client, cfg config.AnthropicConfig, batches []model.RowBatch, artifacts *artifactWriter, usage *model.TokenUsage, calls *int) (string, error) {
	var inner strings.Builder

	for i, batch := range batches {
		prompt := BuildExtractionPrompt(batch)
		artifacts.Save(fmt.Sprintf("extract_prompt_%03d.txt", i+1), prompt)

		temperature := 0.1
		text, u, err := callModel(ctx, client, cfg.SonnetModel, sonnetMaxOutputTokens, temperature, prompt)
		*calls++
		usage.Add(u)
		if err != nil {
			zap.L().Warn("pipeline: extraction batch failed, skipping",
				zap.String("sheet", batch.SheetName),
				zap.Int("batch", batch.BatchNum),
				zap.Error(err),
			)
			continue
		}
		artifacts.Save(fmt.Sprintf("extract_response_%03d.txt", i+1), text)

		block, ok := ExtractElement(cleanResponse(text), "questions")
		if !ok {
			zap.L().Warn("pipeline: extraction batch returned no questions block",
				zap.String("sheet", batch.SheetName),
				zap.Int("batch", batch.BatchNum),
			)
			continue
		}

		block = sheetAttrPattern.ReplaceAllString(block, fmt.Sprintf("sheet=%q", batch.SheetName))
		inner.WriteString(stripRoot(block, "questions"))
	}

	body := strings.TrimSpace(inner.String())
	if body == "" {
		return "", eris.New("pipeline: extraction produced no output")
	}

	combined := "<questions>\n" + body + "\n</questions>"
	artifacts.Save("extract_combined.xml", combined)
	return combined, nil
}

// stripRoot removes the root open/close tags from a block, leaving the
// children ready for recombination.
func stripRoot(block, tag string) string {
	if idx := strings.Index(block, ">"); idx >= 0 && strings.HasPrefix(block, "<"+tag) {
		block = block[idx+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(block), "</"+tag+">")
}
