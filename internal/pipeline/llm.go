package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/survey-cli/internal/model"
	"github.com/sells-group/survey-cli/pkg/anthropic"
)

// Per-model output budgets. The larger analysis model gets more room since
// structure responses cover every sheet in a chunk.
const (
	opusMaxOutputTokens   = 32768
	sonnetMaxOutputTokens = 16384
)

// callModel issues one message call and returns the concatenated text
// content plus token usage.
func callModel(ctx context.Context, client anthropic.Client, modelID string, maxTokens int64, temperature float64, prompt string) (string, model.TokenUsage, error) {
	resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       modelID,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", model.TokenUsage{}, eris.Wrapf(err, "pipeline: model call %s", modelID)
	}

	usage := model.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
	resp.Usage.LogCost(modelID, "extraction-pipeline")

	return extractText(resp), usage, nil
}

// extractText concatenates the text blocks of a response.
func extractText(resp *anthropic.MessageResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
