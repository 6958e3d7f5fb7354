package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driven/embedding/stub"
	"github.com/custodia-labs/recall/internal/core/domain"
)

// countingProvider counts calls to the stub provider it embeds.
type countingProvider struct {
	*stub.EmbeddingProvider
	embeds  int
	batches int
	fail    bool
}

func (c *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	c.embeds++
	if c.fail {
		return nil, domain.NewEmbeddingError(c.Name(), errors.New("down"))
	}
	return c.EmbeddingProvider.Embed(ctx, text)
}

func (c *countingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batches++
	return c.EmbeddingProvider.EmbedBatch(ctx, texts)
}

func TestEmbed_Caches(t *testing.T) {
	inner := &countingProvider{EmbeddingProvider: stub.New(16)}
	p, err := Wrap(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	a, err := p.Embed(ctx, "hello world")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "hello world")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, inner.embeds)
	assert.Equal(t, inner.Name(), p.Name())
	assert.Equal(t, 16, p.Dimension())

	// Mutating a returned vector must not corrupt the cache.
	a[0] = 42
	c, _ := p.Embed(ctx, "hello world")
	assert.NotEqual(t, float32(42), c[0])
}

func TestEmbed_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{EmbeddingProvider: stub.New(16), fail: true}
	p, err := Wrap(inner, 0)
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
	assert.Zero(t, p.Len())
}

func TestEmbedBatch_OnlyMissing(t *testing.T) {
	inner := &countingProvider{EmbeddingProvider: stub.New(16)}
	p, err := Wrap(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = p.Embed(ctx, "cached")
	require.NoError(t, err)

	out, err := p.EmbedBatch(ctx, []string{"cached", "fresh"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, inner.batches)
	assert.Equal(t, 2, p.Len())

	out2, err := p.EmbedBatch(ctx, []string{"fresh", "cached"})
	require.NoError(t, err)
	assert.Equal(t, out[1], out2[0])
	assert.Equal(t, 1, inner.batches)
}

func TestClose_Purges(t *testing.T) {
	p, err := Wrap(stub.New(4), 4)
	require.NoError(t, err)
	_, _ = p.Embed(context.Background(), "x")
	require.NoError(t, p.Close())
	assert.Zero(t, p.Len())
}
