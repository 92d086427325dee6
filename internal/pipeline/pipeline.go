package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/survey-cli/internal/config"
	"github.com/sells-group/survey-cli/internal/model"
	"github.com/sells-group/survey-cli/internal/sheet"
	"github.com/sells-group/survey-cli/internal/store"
	"github.com/sells-group/survey-cli/pkg/anthropic"
)

// Pipeline drives the four extraction stages over one spreadsheet:
// structure analysis, coverage validation, extraction, normalization.
// Stages run strictly in sequence; there is no concurrent mutation of the
// accumulating state.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	anthropic anthropic.Client
}

// New creates a Pipeline. The store may be nil for one-off CLI runs that
// do not persist run records.
func New(cfg *config.Config, st store.Store, aiClient anthropic.Client) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		store:     st,
		anthropic: aiClient,
	}
}

// Run extracts questions from the spreadsheet at filePath. When runID is
// non-empty, per-stage artifacts are written under the configured runs
// directory. Stage failures are converted into a failed ExtractionResult
// rather than propagated; only setup problems (unreadable file) return an
// error directly.
func (p *Pipeline) Run(ctx context.Context, filePath, runID string) (*model.ExtractionResult, error) {
	log := zap.L().With(zap.String("file", filePath), zap.String("run_id", runID))
	log.Info("pipeline: starting extraction")

	wb, err := sheet.Open(filePath)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: open workbook")
	}

	var artifactDir string
	if runID != "" && p.cfg.Extraction.RunsDir != "" {
		artifactDir = filepath.Join(p.cfg.Extraction.RunsDir, runID)
	}
	artifacts := newArtifactWriter(artifactDir)

	result := &model.ExtractionResult{
		Metrics: model.PipelineMetrics{
			StageDurations: make(map[string]int64),
		},
	}

	result.RunID = runID

	var run *model.Run
	if p.store != nil {
		run, err = p.store.CreateRun(ctx, runID, filePath)
		if err != nil {
			log.Warn("pipeline: create run record", zap.Error(err))
		}
		if run != nil {
			// The persisted id is the one callers fetch by; with a
			// caller-supplied runID the two are identical.
			result.RunID = run.ID
		}
	}

	setStatus := func(status model.RunStatus) {
		if p.store == nil || run == nil {
			return
		}
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: update run status", zap.Error(statusErr))
		}
	}

	trackStage := func(name string, fn func() (*model.StageResult, error)) error {
		var stage *model.RunStage
		if p.store != nil && run != nil {
			var stageErr error
			stage, stageErr = p.store.CreateStage(ctx, run.ID, name)
			if stageErr != nil {
				log.Warn("pipeline: create stage record", zap.String("stage", name), zap.Error(stageErr))
			}
		}

		start := time.Now()
		stageResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if stageResult == nil {
			stageResult = &model.StageResult{}
		}
		stageResult.Name = name
		stageResult.Duration = duration
		result.Metrics.StageDurations[name] = duration

		if fnErr != nil {
			stageResult.Status = model.StageStatusFailed
			stageResult.Error = fnErr.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			stageResult.Status = model.StageStatusComplete
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if p.store != nil && stage != nil {
			_ = p.store.CompleteStage(ctx, stage.ID, stageResult)
		}
		result.Stages = append(result.Stages, *stageResult)
		return fnErr
	}

	fail := func(stageErr error) (*model.ExtractionResult, error) {
		result.Success = false
		result.Error = stageErr.Error()
		setStatus(model.RunStatusFailed)
		if p.store != nil && run != nil {
			if saveErr := p.store.CompleteRun(ctx, run.ID, model.RunStatusFailed, result); saveErr != nil {
				log.Warn("pipeline: save failed run", zap.Error(saveErr))
			}
		}
		return result, nil
	}

	usage := &result.Metrics.TotalTokens
	calls := &result.Metrics.LLMCalls

	// Stage 1: structure analysis.
	setStatus(model.RunStatusAnalyzing)
	sheets := wb.ListSheets()
	var structure model.StructureInfo

	err = trackStage(model.StageStructureAnalysis, func() (*model.StageResult, error) {
		chunks := ChunkSheets(sheets, DefaultChunkBudget())
		si, sErr := AnalyzeStructure(ctx, p.anthropic, p.cfg.Anthropic, chunks, artifacts, usage, calls)
		if sErr != nil {
			return nil, sErr
		}
		structure = si
		result.Metrics.StructureConfidence = si.Confidence
		return &model.StageResult{
			Metadata: map[string]any{
				"chunks": len(chunks),
				"sheets": len(si.Sheets),
			},
		}, nil
	})
	if err != nil {
		return fail(err)
	}

	// Stage 2: coverage validation, advisory only.
	setStatus(model.RunStatusValidating)
	_ = trackStage(model.StageCoverageValidation, func() (*model.StageResult, error) {
		result.Coverage = ValidateCoverage(ctx, p.anthropic, p.cfg.Anthropic, sheets, structure, artifacts, usage, calls)
		result.Metrics.CoverageConfidence = result.Coverage.Confidence
		return &model.StageResult{
			Metadata: map[string]any{
				"is_complete": result.Coverage.IsComplete,
				"missing":     len(result.Coverage.MissingElements),
			},
		}, nil
	})

	// Stage 3: extraction.
	setStatus(model.RunStatusExtracting)
	var combined string

	err = trackStage(model.StageExtraction, func() (*model.StageResult, error) {
		batches, bErr := BuildBatches(wb, structure)
		if bErr != nil {
			return nil, bErr
		}
		out, eErr := ExtractQuestions(ctx, p.anthropic, p.cfg.Anthropic, batches, artifacts, usage, calls)
		if eErr != nil {
			return nil, eErr
		}
		combined = out
		return &model.StageResult{
			Metadata: map[string]any{
				"batches": len(batches),
			},
		}, nil
	})
	if err != nil {
		return fail(err)
	}

	// Stage 4: normalization and identity resolution.
	setStatus(model.RunStatusNormalizing)
	err = trackStage(model.StageNormalization, func() (*model.StageResult, error) {
		questions, nErr := Normalize(combined)
		if nErr != nil {
			return nil, nErr
		}
		result.Questions = questions
		show, skip := CountDependencies(questions)
		result.Metrics.ShowDependencies = show
		result.Metrics.SkipDependencies = skip
		return &model.StageResult{
			Metadata: map[string]any{
				"questions": len(questions),
			},
		}, nil
	})
	if err != nil {
		return fail(err)
	}

	result.Success = true
	result.Metrics.TotalCost = anthropic.TokenUsage{
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
	}.EstimateCost(p.cfg.Anthropic.SonnetModel)

	setStatus(model.RunStatusComplete)
	if p.store != nil && run != nil {
		if saveErr := p.store.CompleteRun(ctx, run.ID, model.RunStatusComplete, result); saveErr != nil {
			log.Warn("pipeline: save run result", zap.Error(saveErr))
		}
	}

	log.Info("pipeline: extraction complete",
		zap.Int("questions", len(result.Questions)),
		zap.Int("llm_calls", result.Metrics.LLMCalls),
		zap.Float64("structure_confidence", result.Metrics.StructureConfidence),
	)

	return result, nil
}
