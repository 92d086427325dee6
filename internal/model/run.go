package model

import "time"

// RunStatus represents the current state of an extraction run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusAnalyzing   RunStatus = "analyzing"
	RunStatusValidating  RunStatus = "validating"
	RunStatusExtracting  RunStatus = "extracting"
	RunStatusNormalizing RunStatus = "normalizing"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Stage names, in pipeline order.
const (
	StageStructureAnalysis  = "structure_analysis"
	StageCoverageValidation = "coverage_validation"
	StageExtraction         = "extraction"
	StageNormalization      = "normalization"
)

// StageStatus represents the current state of a pipeline stage.
type StageStatus string

const (
	StageStatusRunning  StageStatus = "running"
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
)

// StageResult holds the outcome of a pipeline stage.
type StageResult struct {
	Name       string         `json:"name"`
	Status     StageStatus    `json:"status"`
	Duration   int64          `json:"duration_ms"`
	TokenUsage TokenUsage     `json:"token_usage"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// PipelineMetrics accumulates timing and confidence data across one run.
// Fields are written once by the stage that owns them.
type PipelineMetrics struct {
	StageDurations      map[string]int64 `json:"stage_durations_ms"`
	LLMCalls            int              `json:"llm_calls"`
	StructureConfidence float64          `json:"structure_confidence"`
	CoverageConfidence  float64          `json:"coverage_confidence"`
	ShowDependencies    int              `json:"show_dependencies"`
	SkipDependencies    int              `json:"skip_dependencies"`
	TotalTokens         TokenUsage       `json:"total_tokens"`
	TotalCost           float64          `json:"total_cost"`
}

// ExtractionResult is the final output of one pipeline run. RunID is the
// identifier the run is persisted and fetched under.
type ExtractionResult struct {
	RunID     string              `json:"run_id,omitempty"`
	Success   bool                `json:"success"`
	Error     string              `json:"error,omitempty"`
	Questions []ExtractedQuestion `json:"questions"`
	Coverage  CoverageInfo        `json:"coverage"`
	Metrics   PipelineMetrics     `json:"metrics"`
	Stages    []StageResult       `json:"stages"`
}

// Run represents a single extraction run over one spreadsheet file.
type Run struct {
	ID        string            `json:"id"`
	FilePath  string            `json:"file_path"`
	Status    RunStatus         `json:"status"`
	Result    *ExtractionResult `json:"result,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// RunStage represents a stage record within a persisted run.
type RunStage struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Status    StageStatus  `json:"status"`
	Result    *StageResult `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}
