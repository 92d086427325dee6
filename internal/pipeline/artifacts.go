package pipeline

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// artifactWriter dumps prompts, raw responses, and parsed intermediates to
// a per-run directory at stage boundaries. Purely observability; writes are
// best effort and failures never touch the pipeline outcome.
type artifactWriter struct {
	dir string
}

// newArtifactWriter returns a writer rooted at dir, or a disabled writer
// when dir is empty (no run identifier supplied).
func newArtifactWriter(dir string) *artifactWriter {
	if dir == "" {
		return &artifactWriter{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		zap.L().Warn("pipeline: create artifact dir", zap.String("dir", dir), zap.Error(err))
		return &artifactWriter{}
	}
	return &artifactWriter{dir: dir}
}

func (w *artifactWriter) enabled() bool {
	return w.dir != ""
}

// Save writes one artifact file under the run directory.
func (w *artifactWriter) Save(name, content string) {
	if !w.enabled() {
		return
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		zap.L().Warn("pipeline: write artifact", zap.String("path", path), zap.Error(err))
	}
}
