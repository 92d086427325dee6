package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/survey-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// --- Runs ---

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "", "surveys/intake.xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "surveys/intake.xlsx", got.FilePath)
	assert.Nil(t, got.Result)
}

func TestSQLite_CreateRunKeepsSuppliedID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "caller-chosen-id", "surveys/intake.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "caller-chosen-id", run.ID)

	got, err := st.GetRun(ctx, "caller-chosen-id")
	require.NoError(t, err)
	assert.Equal(t, "surveys/intake.xlsx", got.FilePath)
}

func TestSQLite_GetRunMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "no-such-run")
	assert.Error(t, err)
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "", "surveys/intake.xlsx")
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusExtracting))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusExtracting, got.Status)
}

func TestSQLite_UpdateRunStatusMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "no-such-run", model.RunStatusFailed)
	assert.Error(t, err)
}

func TestSQLite_CompleteRunRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "", "surveys/intake.xlsx")
	require.NoError(t, err)

	result := &model.ExtractionResult{
		Success: true,
		Questions: []model.ExtractedQuestion{
			{ID: "q-1", Text: "How satisfied are you?", Type: model.QuestionTypeSingleChoice},
		},
		Coverage: model.DefaultCoverage(),
		Metrics: model.PipelineMetrics{
			StageDurations: map[string]int64{model.StageExtraction: 1200},
			LLMCalls:       3,
		},
	}
	require.NoError(t, st.CompleteRun(ctx, run.ID, model.RunStatusComplete, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.True(t, got.Result.Success)
	require.Len(t, got.Result.Questions, 1)
	assert.Equal(t, "How satisfied are you?", got.Result.Questions[0].Text)
	assert.Equal(t, 3, got.Result.Metrics.LLMCalls)
}

func TestSQLite_ListRunsFilters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, "", "a.xlsx")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "", "b.xlsx")
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, a.ID, model.RunStatusFailed))

	failed, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, a.ID, failed[0].ID)

	byFile, err := st.ListRuns(ctx, RunFilter{FilePath: "b.xlsx"})
	require.NoError(t, err)
	require.Len(t, byFile, 1)
	assert.Equal(t, "b.xlsx", byFile[0].FilePath)

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// --- Stages ---

func TestSQLite_StageLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "", "surveys/intake.xlsx")
	require.NoError(t, err)

	stage, err := st.CreateStage(ctx, run.ID, model.StageStructureAnalysis)
	require.NoError(t, err)
	assert.Equal(t, model.StageStatusRunning, stage.Status)

	err = st.CompleteStage(ctx, stage.ID, &model.StageResult{
		Name:     model.StageStructureAnalysis,
		Status:   model.StageStatusComplete,
		Duration: 840,
	})
	require.NoError(t, err)
}

func TestSQLite_CompleteStageMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteStage(context.Background(), "no-such-stage", &model.StageResult{
		Status: model.StageStatusComplete,
	})
	assert.Error(t, err)
}

// --- Ground truth ---

func TestSQLite_GroundTruthRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	entries := []model.GroundTruthEntry{
		{Text: "What is your name?", Type: model.QuestionTypeOpenEnded},
		{Text: "Do you smoke?", Type: model.QuestionTypeYesNo},
	}
	require.NoError(t, st.SaveGroundTruth(ctx, "intake.xlsx", entries))

	got, err := st.GetGroundTruth(ctx, "intake.xlsx")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestSQLite_GroundTruthUpsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveGroundTruth(ctx, "intake.xlsx", []model.GroundTruthEntry{{Text: "old"}}))
	require.NoError(t, st.SaveGroundTruth(ctx, "intake.xlsx", []model.GroundTruthEntry{{Text: "new"}}))

	got, err := st.GetGroundTruth(ctx, "intake.xlsx")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Text)
}

func TestSQLite_GroundTruthMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetGroundTruth(context.Background(), "unknown.xlsx")
	require.NoError(t, err)
	assert.Nil(t, got)
}
