package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService keeps the index in step with the workspace on disk.
// Change detection relies solely on content checksums.
type SyncService struct {
	source  driven.DocumentSource
	store   driven.DocumentStore
	indexer *Indexer

	// Only one sync runs at a time.
	mu sync.Mutex
}

// NewSyncService creates a sync service.
func NewSyncService(source driven.DocumentSource, store driven.DocumentStore, indexer *Indexer) *SyncService {
	return &SyncService{
		source:  source,
		store:   store,
		indexer: indexer,
	}
}

// Sync indexes changed files under the workspace and removes records whose
// source file no longer exists.
func (s *SyncService) Sync(ctx context.Context) (*domain.BatchReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Sync")
	done := logger.Timed("sync")
	defer done()

	paths, err := s.source.Walk(ctx)
	if err != nil {
		return nil, fmt.Errorf("walk workspace: %w", err)
	}
	logger.Debug("found %d indexable files under %s", len(paths), s.source.Root())

	candidates, err := s.store.GetReindexCandidates(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("reindex candidates: %w", err)
	}

	var changed []string
	for _, c := range candidates {
		if c.NeedsIndexing {
			changed = append(changed, c.Path)
		}
	}
	logger.Debug("%d of %d files changed", len(changed), len(paths))

	report := s.index(ctx, changed)
	report.Skipped += len(paths) - len(changed)

	removed, err := s.removeVanished(ctx, paths)
	if err != nil {
		return report, err
	}
	report.Removed = removed

	logger.Info("sync: %d indexed, %d unchanged, %d failed, %d removed",
		report.Indexed, report.Skipped, report.Failed, report.Removed)
	return report, nil
}

// IndexPaths indexes the given files, reporting per-file outcomes.
// Unchanged files are reported as skipped.
func (s *SyncService) IndexPaths(ctx context.Context, paths []string) (*domain.BatchReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(ctx, paths), nil
}

// index reads and indexes paths. Unreadable files are reported as failed.
func (s *SyncService) index(ctx context.Context, paths []string) *domain.BatchReport {
	items := make([]domain.IngestItem, 0, len(paths))
	var unreadable []domain.IndexOutcome
	for _, p := range paths {
		content, meta, err := s.source.Read(ctx, p)
		if err != nil {
			logger.Warn("read %s: %v", p, err)
			unreadable = append(unreadable, domain.IndexOutcome{Path: p, DocumentID: domain.DocumentID(p), Err: err})
			continue
		}
		items = append(items, domain.IngestItem{Path: p, Content: content, Meta: meta})
	}

	report := s.indexer.IndexBatch(ctx, items)
	for _, o := range unreadable {
		report.Add(o)
	}
	return report
}

// removeVanished deletes documents whose source path was not walked and no
// longer exists on disk.
func (s *SyncService) removeVanished(ctx context.Context, walked []string) (int, error) {
	seen := make(map[string]bool, len(walked))
	for _, p := range walked {
		seen[domain.DocumentID(p)] = true
	}

	docs, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	removed := 0
	for _, d := range docs {
		if seen[d.ID] {
			continue
		}
		if _, err := os.Stat(d.SourcePath); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := s.store.Remove(ctx, d.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return removed, fmt.Errorf("remove %s: %w", d.SourcePath, err)
		}
		logger.Debug("removed vanished %s", d.SourcePath)
		removed++
	}
	return removed, nil
}
