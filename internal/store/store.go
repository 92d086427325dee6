package store

import (
	"context"

	"github.com/sells-group/survey-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	FilePath string          `json:"file_path,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for extraction runs and ground
// truth labels.
type Store interface {
	// Runs. CreateRun persists the run under the given id so callers can
	// fetch it by the identifier they were shown; an empty id generates one.
	CreateRun(ctx context.Context, id, filePath string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, result *model.ExtractionResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Stages
	CreateStage(ctx context.Context, runID string, name string) (*model.RunStage, error)
	CompleteStage(ctx context.Context, stageID string, result *model.StageResult) error

	// Ground truth
	SaveGroundTruth(ctx context.Context, fileKey string, entries []model.GroundTruthEntry) error
	GetGroundTruth(ctx context.Context, fileKey string) ([]model.GroundTruthEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
