package pipeline

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/survey-cli/internal/config"
	"github.com/sells-group/survey-cli/internal/model"
	"github.com/sells-group/survey-cli/pkg/anthropic"
)

const structurePromptHeader = `You are analyzing spreadsheet metadata to locate survey questions.

For each sheet below, identify:
- header_row: the 1-based row holding column headers
- data_start_row: the 1-based row where question data begins
- which column holds the question text (required), and which columns hold
  answers, answer options, question type, instructions, additional answers,
  or follow-up prompts (all optional)

Respond with ONLY this XML:
<structure_analysis confidence="0.0-1.0">
  <sheet sheet_name="..." header_row="1" data_start_row="2" confidence="0.0-1.0">
    <columns question_column="..." answer_column="..." answer_options_column="..." type_column="..." instruction_column="..." additional_answer_column="..." followup_column=""/>
    <structure_notes>free text observations</structure_notes>
  </sheet>
</structure_analysis>

Use the column names exactly as listed in the metadata. Omit attributes for
columns a sheet does not have. Sheets with no questions at all should be
omitted entirely.

Sheet metadata:
`

type structureXML struct {
	XMLName    xml.Name            `xml:"structure_analysis"`
	Confidence string              `xml:"confidence,attr"`
	Sheets     []structureSheetXML `xml:"sheet"`
}

type structureSheetXML struct {
	SheetName    string            `xml:"sheet_name,attr"`
	HeaderRow    string            `xml:"header_row,attr"`
	DataStartRow string            `xml:"data_start_row,attr"`
	Confidence   string            `xml:"confidence,attr"`
	Columns      structureColsXML  `xml:"columns"`
	Notes        string            `xml:"structure_notes"`
}

type structureColsXML struct {
	Question         string `xml:"question_column,attr"`
	Answer           string `xml:"answer_column,attr"`
	AnswerOptions    string `xml:"answer_options_column,attr"`
	Type             string `xml:"type_column,attr"`
	Instruction      string `xml:"instruction_column,attr"`
	AdditionalAnswer string `xml:"additional_answer_column,attr"`
	Followup         string `xml:"followup_column,attr"`
}

// BuildStructurePrompt renders the structure-analysis prompt for one chunk.
func BuildStructurePrompt(chunk model.Chunk) string {
	var b strings.Builder
	b.WriteString(structurePromptHeader)
	for _, s := range chunk.Sheets {
		b.WriteString(renderSheetMetadata(s))
	}
	return b.String()
}

// AnalyzeStructure runs structure analysis over every chunk sequentially
// and merges the per-chunk results. A failed or unparseable chunk skips its
// sheets with a warning; overall confidence averages the chunks that
// succeeded. Returns an error only when no sheet was identified at all.
func AnalyzeStructure(ctx context.Context, client anthropic.Client, cfg config.AnthropicConfig, chunks []model.Chunk, artifacts *artifactWriter, usage *model.TokenUsage, calls *int) (model.StructureInfo, error) {
	var info model.StructureInfo
	var confidences []float64

	for i, chunk := range chunks {
		prompt := BuildStructurePrompt(chunk)
		artifacts.Save(fmt.Sprintf("structure_prompt_%d.txt", i+1), prompt)

		temperature := 0.1
		text, u, err := callModel(ctx, client, cfg.OpusModel, opusMaxOutputTokens, temperature, prompt)
		*calls++
		usage.Add(u)
		if err != nil {
			zap.L().Warn("pipeline: structure chunk failed, skipping its sheets",
				zap.Int("chunk", i+1),
				zap.Int("sheets", len(chunk.Sheets)),
				zap.Error(err),
			)
			continue
		}
		artifacts.Save(fmt.Sprintf("structure_response_%d.txt", i+1), text)

		part, err := parseStructureResponse(text)
		if err != nil {
			zap.L().Warn("pipeline: structure chunk unparseable, skipping its sheets",
				zap.Int("chunk", i+1),
				zap.Error(err),
			)
			continue
		}

		info.Sheets = append(info.Sheets, part.Sheets...)
		confidences = append(confidences, part.Confidence)
	}

	if len(confidences) > 0 {
		var sum float64
		for _, c := range confidences {
			sum += c
		}
		info.Confidence = sum / float64(len(confidences))
	}

	if len(info.Sheets) == 0 {
		return info, eris.New("pipeline: structure analysis identified no sheets")
	}
	return info, nil
}

// parseStructureResponse decodes one chunk's structure-analysis output.
// Root confidence falls back to the average of per-sheet confidences when
// the root attribute is absent or malformed.
func parseStructureResponse(text string) (model.StructureInfo, error) {
	var info model.StructureInfo

	block, ok := ExtractElement(cleanResponse(text), "structure_analysis")
	if !ok {
		return info, eris.New("pipeline: no structure_analysis block in response")
	}

	var parsed structureXML
	if err := decodeElement(block, &parsed); err != nil {
		return info, err
	}

	var sheetSum float64
	for _, s := range parsed.Sheets {
		if s.SheetName == "" || s.Columns.Question == "" {
			continue
		}
		st := model.SheetStructure{
			SheetName:    s.SheetName,
			HeaderRow:    atoiDefault(s.HeaderRow, 1),
			DataStartRow: atoiDefault(s.DataStartRow, 2),
			Columns:      columnRolesFromXML(s.Columns),
			Notes:        strings.TrimSpace(s.Notes),
			Confidence:   parseConfidence(s.Confidence),
		}
		sheetSum += st.Confidence
		info.Sheets = append(info.Sheets, st)
	}

	info.Confidence = parseConfidence(parsed.Confidence)
	if info.Confidence == 0 && len(info.Sheets) > 0 {
		info.Confidence = sheetSum / float64(len(info.Sheets))
	}

	return info, nil
}

func columnRolesFromXML(c structureColsXML) model.ColumnRoles {
	roles := model.ColumnRoles{}
	set := func(role model.ColumnRole, name string) {
		if strings.TrimSpace(name) != "" {
			roles[role] = strings.TrimSpace(name)
		}
	}
	set(model.RoleQuestion, c.Question)
	set(model.RoleAnswer, c.Answer)
	set(model.RoleAnswerOptions, c.AnswerOptions)
	set(model.RoleType, c.Type)
	set(model.RoleInstruction, c.Instruction)
	set(model.RoleAdditionalAnswer, c.AdditionalAnswer)
	set(model.RoleFollowup, c.Followup)
	return roles
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// parseConfidence clamps a confidence attribute into [0,1]; malformed
// values read as 0.
func parseConfidence(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
