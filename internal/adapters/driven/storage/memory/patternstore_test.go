package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

func TestPatternStore_RecordAndList(t *testing.T) {
	store := NewPatternStore()
	ctx := context.Background()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordPattern(ctx, "Cat  Facts", []string{"b.md", "a.md"}, true, at))
	require.NoError(t, store.RecordPattern(ctx, "cat facts", []string{"a.md", "b.md"}, false, at.Add(time.Minute)))
	require.NoError(t, store.RecordPattern(ctx, "dogs", []string{"d.md"}, true, at))

	patterns, err := store.ListPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, "cat facts", patterns[0].Query)
	assert.Equal(t, []string{"a.md", "b.md"}, patterns[0].ResultFiles)
	assert.Equal(t, 2, patterns[0].TotalCount)
	assert.Equal(t, 1, patterns[0].SuccessCount)
	assert.NotEmpty(t, patterns[0].ID)

	assert.ErrorIs(t, store.RecordPattern(ctx, "", nil, true, at), domain.ErrInvalidInput)
}

func TestPatternStore_Prune(t *testing.T) {
	store := NewPatternStore()
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordPattern(ctx, "stale", nil, false, old))
	require.NoError(t, store.RecordPattern(ctx, "useful", nil, true, old))
	require.NoError(t, store.RecordPattern(ctx, "fresh", nil, false, old.AddDate(2, 0, 0)))

	n, err := store.PrunePatterns(ctx, old.AddDate(1, 0, 0), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	patterns, err := store.ListPatterns(ctx)
	require.NoError(t, err)
	assert.Len(t, patterns, 2)
}
