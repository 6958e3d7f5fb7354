package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driven/embedding/stub"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall/internal/core/domain"
)

func TestNewIndexer_DefaultConcurrency(t *testing.T) {
	engine, store := newTestEngine(t)

	assert.Equal(t, DefaultIndexConcurrency, NewIndexer(engine, store, 0).concurrency)
	assert.Equal(t, 2, NewIndexer(engine, store, 2).concurrency)
}

func TestIndexer_Submit(t *testing.T) {
	engine, store := newTestEngine(t)
	indexer := NewIndexer(engine, store, 1)
	ctx := context.Background()
	modified := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	outcome, err := indexer.Submit(ctx, "notes/plan.md", "# Launch Plan\n\nShip it.", domain.IngestMetadata{
		ModifiedAt: modified,
		Tags:       []string{"Work"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentID("notes/plan.md"), outcome.DocumentID)

	doc, err := store.Get(ctx, outcome.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "Launch Plan", doc.Title)
	assert.Equal(t, "md", doc.FileType)
	assert.Equal(t, modified, doc.ModifiedAt)
	assert.Equal(t, []string{"work"}, doc.Tags)
}

func TestIndexer_Submit_NilTagsKeepExisting(t *testing.T) {
	engine, store := newTestEngine(t)
	indexer := NewIndexer(engine, store, 1)
	ctx := context.Background()

	_, err := indexer.Submit(ctx, "a.md", "v1", domain.IngestMetadata{Tags: []string{"keep"}})
	require.NoError(t, err)
	_, err = indexer.Submit(ctx, "a.md", "v2", domain.IngestMetadata{})
	require.NoError(t, err)

	doc, err := store.Get(ctx, domain.DocumentID("a.md"))
	require.NoError(t, err)
	assert.Equal(t, "v2", doc.Content)
	assert.Equal(t, []string{"keep"}, doc.Tags)
}

func TestIndexer_Remove(t *testing.T) {
	engine, store := newTestEngine(t)
	indexer := NewIndexer(engine, store, 1)
	ctx := context.Background()
	_, err := indexer.Submit(ctx, "a.md", "content", domain.IngestMetadata{})
	require.NoError(t, err)

	require.NoError(t, indexer.Remove(ctx, "a.md"))
	assert.ErrorIs(t, indexer.Remove(ctx, "a.md"), domain.ErrNotFound)
}

func TestIndexer_IndexBatch_PartialFailure(t *testing.T) {
	store := memory.NewDocumentStore()
	provider := &countingProvider{EmbeddingProvider: stub.New(32), failOn: "corrupt"}
	engine := NewRetrievalEngine(store, provider, nil)
	indexer := NewIndexer(engine, store, 3)
	ctx := context.Background()

	items := []domain.IngestItem{
		{Path: "1.md", Content: "first note"},
		{Path: "2.md", Content: "corrupt bytes"},
		{Path: "3.md", Content: "third note"},
		{Path: "4.md", Content: "fourth note"},
	}
	report := indexer.IndexBatch(ctx, items)

	assert.Equal(t, 3, report.Indexed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 4)
	for i, o := range report.Outcomes {
		assert.Equal(t, items[i].Path, o.Path, "outcomes keep input order")
	}
	assert.ErrorIs(t, report.Outcomes[1].Err, domain.ErrEmbeddingFailure)
	assert.False(t, report.Outcomes[1].OK())

	again := indexer.IndexBatch(ctx, items)
	assert.Equal(t, 3, again.Skipped)
	assert.Equal(t, 1, again.Failed)
}

func TestTitleFor(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    string
	}{
		{"heading", "a.md", "intro\n#  Title Here \nbody", "Title Here"},
		{"subheading ignored", "notes/b.md", "## Sub\nbody", "b"},
		{"no heading", "dir/report.final.txt", "plain", "report.final"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFor(tt.path, tt.content))
		})
	}
}
