package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IngestionService = (*Indexer)(nil)

// DefaultIndexConcurrency is the number of documents indexed in parallel by IndexBatch.
const DefaultIndexConcurrency = 4

// Indexer accepts content from document sources and indexes it through the
// retrieval engine.
type Indexer struct {
	engine      *RetrievalEngine
	store       driven.DocumentStore
	concurrency int
}

// NewIndexer creates an indexer. A concurrency of zero or less uses
// DefaultIndexConcurrency.
func NewIndexer(engine *RetrievalEngine, store driven.DocumentStore, concurrency int) *Indexer {
	if concurrency <= 0 {
		concurrency = DefaultIndexConcurrency
	}
	return &Indexer{
		engine:      engine,
		store:       store,
		concurrency: concurrency,
	}
}

// Submit indexes content for path, skipping unchanged content.
func (i *Indexer) Submit(ctx context.Context, path, content string, meta domain.IngestMetadata) (domain.IndexOutcome, error) {
	doc := domain.Document{
		SourcePath: path,
		Content:    content,
		Title:      meta.Title,
		FileType:   meta.FileType,
		Tags:       meta.Tags,
		ModifiedAt: meta.ModifiedAt,
	}
	if doc.Title == "" {
		doc.Title = TitleFor(path, content)
	}
	if doc.FileType == "" {
		doc.FileType = domain.FileTypeOf(path)
	}
	return i.engine.IndexDocument(ctx, doc, meta.Tags != nil)
}

// Remove deletes the document derived from path.
func (i *Indexer) Remove(ctx context.Context, path string) error {
	if err := i.store.Remove(ctx, domain.DocumentID(path)); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	logger.Debug("removed %s", path)
	return nil
}

// IndexBatch indexes items with bounded parallelism. A failing item does not
// abort the batch; each item gets its own outcome, in input order.
func (i *Indexer) IndexBatch(ctx context.Context, items []domain.IngestItem) *domain.BatchReport {
	outcomes := make([]domain.IndexOutcome, len(items))

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for n, item := range items {
		g.Go(func() error {
			outcome, err := i.Submit(gctx, item.Path, item.Content, item.Meta)
			if err != nil {
				logger.Warn("index %s: %v", item.Path, err)
				outcome = domain.IndexOutcome{Path: item.Path, DocumentID: domain.DocumentID(item.Path), Err: err}
			}
			outcomes[n] = outcome

			mu.Lock()
			done++
			logger.Debug("indexed %d/%d", done, len(items))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report := &domain.BatchReport{}
	for _, o := range outcomes {
		report.Add(o)
	}
	logger.Info("batch: %d indexed, %d unchanged, %d failed", report.Indexed, report.Skipped, report.Failed)
	return report
}

// TitleFor derives a title from the first markdown heading of content,
// falling back to the file name without its extension.
func TitleFor(path, content string) string {
	for _, line := range strings.SplitN(content, "\n", 50) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
