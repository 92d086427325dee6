package pipeline

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/survey-cli/internal/config"
	"github.com/sells-group/survey-cli/internal/model"
	"github.com/sells-group/survey-cli/pkg/anthropic"
)

const coveragePromptHeader = `You are auditing a structure analysis of a survey spreadsheet. Given the
sheet metadata and the structure analysis below, judge whether the analysis
covers every sheet and column that plausibly holds survey questions.

Respond with ONLY this XML:
<coverage_validation is_complete="true|false" confidence="0.0-1.0">
  <missing_elements>
    <element>description of anything missed</element>
  </missing_elements>
  <suggestions>
    <suggestion>how to improve the analysis</suggestion>
  </suggestions>
</coverage_validation>
`

type coverageXML struct {
	XMLName    xml.Name `xml:"coverage_validation"`
	IsComplete string   `xml:"is_complete,attr"`
	Confidence string   `xml:"confidence,attr"`
	Missing    struct {
		Elements []string `xml:"element"`
	} `xml:"missing_elements"`
	Suggestions struct {
		Items []string `xml:"suggestion"`
	} `xml:"suggestions"`
}

// BuildCoveragePrompt renders the coverage-validation prompt.
func BuildCoveragePrompt(sheets []model.SheetDescriptor, structure model.StructureInfo) string {
	var b strings.Builder
	b.WriteString(coveragePromptHeader)

	b.WriteString("\nSheet metadata:\n")
	for _, s := range sheets {
		b.WriteString(renderSheetMetadata(s))
	}

	b.WriteString("\nStructure analysis:\n")
	for _, st := range structure.Sheets {
		fmt.Fprintf(&b, "- %s: header row %d, data from row %d, question column %q",
			st.SheetName, st.HeaderRow, st.DataStartRow, st.Columns[model.RoleQuestion])
		if st.Notes != "" {
			fmt.Fprintf(&b, " (%s)", st.Notes)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// ValidateCoverage runs the advisory coverage check. It never fails the
// pipeline: a call error or unparseable response substitutes the default
// verdict (complete, confidence 0.5) and the run proceeds.
func ValidateCoverage(ctx context.Context, client anthropic.Client, cfg config.AnthropicConfig, sheets []model.SheetDescriptor, structure model.StructureInfo, artifacts *artifactWriter, usage *model.TokenUsage, calls *int) model.CoverageInfo {
	prompt := BuildCoveragePrompt(sheets, structure)
	artifacts.Save("coverage_prompt.txt", prompt)

	temperature := 0.0
	text, u, err := callModel(ctx, client, cfg.SonnetModel, sonnetMaxOutputTokens, temperature, prompt)
	*calls++
	usage.Add(u)
	if err != nil {
		zap.L().Warn("pipeline: coverage call failed, using default verdict", zap.Error(err))
		return model.DefaultCoverage()
	}
	artifacts.Save("coverage_response.txt", text)

	return parseCoverageResponse(text)
}

// parseCoverageResponse decodes the coverage verdict, substituting the
// default on anything unparseable.
func parseCoverageResponse(text string) model.CoverageInfo {
	block, ok := ExtractElement(cleanResponse(text), "coverage_validation")
	if !ok {
		return model.DefaultCoverage()
	}

	var parsed coverageXML
	if err := decodeElement(block, &parsed); err != nil {
		zap.L().Warn("pipeline: coverage response unparseable, using default verdict", zap.Error(err))
		return model.DefaultCoverage()
	}

	info := model.CoverageInfo{
		IsComplete: !strings.EqualFold(strings.TrimSpace(parsed.IsComplete), "false"),
		Confidence: coverageConfidence(parsed.Confidence),
	}
	for _, e := range parsed.Missing.Elements {
		if e = strings.TrimSpace(e); e != "" {
			info.MissingElements = append(info.MissingElements, e)
		}
	}
	for _, s := range parsed.Suggestions.Items {
		if s = strings.TrimSpace(s); s != "" {
			info.Suggestions = append(info.Suggestions, s)
		}
	}
	return info
}

// coverageConfidence reads the verdict's confidence attribute. An absent or
// malformed attribute takes the default 0.5; a parsed value is kept even
// when it is 0.0.
func coverageConfidence(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0.5
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.5
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
