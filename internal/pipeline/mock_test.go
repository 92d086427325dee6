package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/survey-cli/internal/model"
	"github.com/sells-group/survey-cli/internal/sheet"
	"github.com/sells-group/survey-cli/pkg/anthropic"
)

// mockLLM is a testify mock for the Anthropic client.
type mockLLM struct {
	mock.Mock
}

var _ anthropic.Client = (*mockLLM)(nil)

func (m *mockLLM) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// textResponse builds a single-text-block response with token usage.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}
}

// forModel matches requests addressed to a given model ID.
func forModel(id string) any {
	return mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == id
	})
}

// fakeWorkbook is an in-memory Workbook for batching tests. Rows are stored
// 0-indexed; row 1 is rows[0].
type fakeWorkbook struct {
	name string
	rows [][]string
}

var _ sheet.Workbook = (*fakeWorkbook)(nil)

func (f *fakeWorkbook) SheetNames() []string { return []string{f.name} }

func (f *fakeWorkbook) ListSheets() []model.SheetDescriptor {
	var cols []string
	if len(f.rows) > 0 {
		cols = f.rows[0]
	}
	return []model.SheetDescriptor{{
		Name:       f.name,
		Columns:    cols,
		RowCount:   len(f.rows) - 1,
		SampleRows: f.rows[1:min(len(f.rows), 31)],
	}}
}

func (f *fakeWorkbook) HeaderRow(_ string, row int) ([]string, error) {
	if row < 1 || row > len(f.rows) {
		return nil, nil
	}
	return f.rows[row-1], nil
}

func (f *fakeWorkbook) Rows(_ string, start, end int) ([][]string, error) {
	if end <= 0 || end > len(f.rows) {
		end = len(f.rows)
	}
	if start < 1 {
		start = 1
	}
	if start > end {
		return nil, nil
	}
	return f.rows[start-1 : end], nil
}

func (f *fakeWorkbook) RowCount(_ string) (int, error) {
	return len(f.rows), nil
}
