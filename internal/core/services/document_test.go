package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

func TestDocumentService_Details(t *testing.T) {
	store := memory.NewDocumentStore()
	ctx := context.Background()
	id := domain.DocumentID("notes/a.md")
	require.NoError(t, store.Upsert(ctx, driven.UpsertInput{
		Document:  domain.Document{SourcePath: "notes/a.md", Content: "one. two."},
		Embedding: &domain.Embedding{Vector: []float32{1, 0, 0}, ProviderName: "stub/hash-3"},
		Chunks: []domain.Chunk{
			{DocumentID: id, Index: 0, Content: "one."},
			{DocumentID: id, Index: 1, Content: "two."},
		},
	}))
	require.NoError(t, store.Upsert(ctx, driven.UpsertInput{
		Document: domain.Document{SourcePath: "bare.md", Content: "bare"},
	}))
	svc := NewDocumentService(store)

	details, err := svc.Details(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "notes/a.md", details.SourcePath)
	assert.Equal(t, 2, details.ChunkCount)
	assert.Equal(t, "stub/hash-3", details.EmbeddingProvider)
	assert.Equal(t, 3, details.Dimensions)

	details, err = svc.Details(ctx, domain.DocumentID("bare.md"))
	require.NoError(t, err)
	assert.Empty(t, details.EmbeddingProvider)
	assert.Zero(t, details.ChunkCount)

	_, err = svc.Details(ctx, "doc_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Delegates(t *testing.T) {
	store := memory.NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, driven.UpsertInput{
		Document:    domain.Document{SourcePath: "a.md", Content: "a", Tags: []string{"x"}},
		ReplaceTags: true,
	}))
	svc := NewDocumentService(store)

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	tagged, err := svc.ListByTag(ctx, "x")
	require.NoError(t, err)
	assert.Len(t, tagged, 1)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
}

func TestDocumentService_Open(t *testing.T) {
	store := memory.NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, driven.UpsertInput{
		Document: domain.Document{SourcePath: "file:///home/me/a.md", Content: "a"},
	}))
	svc := NewDocumentService(store)

	var opened string
	svc.opener = func(target string) error {
		opened = target
		return nil
	}

	require.NoError(t, svc.Open(ctx, domain.DocumentID("file:///home/me/a.md")))
	assert.Equal(t, "/home/me/a.md", opened)

	svc.opener = func(string) error { return errors.New("no handler") }
	assert.Error(t, svc.Open(ctx, domain.DocumentID("file:///home/me/a.md")))
	assert.ErrorIs(t, svc.Open(ctx, "doc_missing"), domain.ErrNotFound)
}
