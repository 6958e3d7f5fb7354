package driving

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// SyncService keeps the index in step with the workspace on disk.
type SyncService interface {
	// Sync indexes changed files under the workspace and removes vanished ones.
	Sync(ctx context.Context) (*domain.BatchReport, error)

	// IndexPaths indexes the given files, reporting per-file outcomes.
	IndexPaths(ctx context.Context, paths []string) (*domain.BatchReport, error)
}
