package stub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/scoring"
)

func TestNew(t *testing.T) {
	assert.Equal(t, DefaultDimensions, New(0).Dimension())
	assert.Equal(t, 64, New(64).Dimension())
	assert.Equal(t, "stub/hash-64", New(64).Name())
}

func TestEmbed_Deterministic(t *testing.T) {
	p := New(128)
	ctx := context.Background()

	a, err := p.Embed(ctx, "The cat sat on the mat")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "The cat sat on the mat")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 128)
}

func TestEmbed_UnitLength(t *testing.T) {
	v, err := New(0).Embed(context.Background(), "vectors have unit length")
	require.NoError(t, err)

	sim, err := scoring.Cosine(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-5)
}

func TestEmbed_SharedVocabularyIsCloser(t *testing.T) {
	p := New(0)
	ctx := context.Background()

	cat, _ := p.Embed(ctx, "the cat sat on the mat")
	cat2, _ := p.Embed(ctx, "where did the cat sit on the mat")
	stocks, _ := p.Embed(ctx, "quarterly revenue growth exceeded forecasts")

	near, err := scoring.Cosine(cat, cat2)
	require.NoError(t, err)
	far, err := scoring.Cosine(cat, stocks)
	require.NoError(t, err)
	assert.Greater(t, near, far)
}

func TestEmbed_Empty(t *testing.T) {
	v, err := New(16).Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, v, 16)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestEmbed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(0).Embed(ctx, "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedBatch(t *testing.T) {
	p := New(32)
	out, err := p.EmbedBatch(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	one, _ := p.Embed(context.Background(), "one")
	assert.Equal(t, one, out[0])
}
