// Package cache provides an LRU-caching decorator for embedding providers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure EmbeddingProvider implements the interface.
var _ driven.EmbeddingProvider = (*EmbeddingProvider)(nil)

// DefaultSize is the default number of cached vectors.
const DefaultSize = 256

// EmbeddingProvider caches vectors of an inner provider keyed by text.
// Queries repeat often in conversational use, and re-embedding an
// unchanged query is pure latency.
type EmbeddingProvider struct {
	inner driven.EmbeddingProvider
	cache *lru.Cache[string, []float32]
}

// Wrap decorates inner with an LRU cache of size entries.
func Wrap(inner driven.EmbeddingProvider, size int) (*EmbeddingProvider, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &EmbeddingProvider{inner: inner, cache: c}, nil
}

func key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Embed returns the cached vector for text or embeds it.
func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	k := key(text)
	if v, ok := p.cache.Get(k); ok {
		return clone(v), nil
	}
	v, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	p.cache.Add(k, clone(v))
	return v, nil
}

// EmbedBatch embeds only the texts missing from the cache.
func (p *EmbeddingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var positions []int
	for i, text := range texts {
		if v, ok := p.cache.Get(key(text)); ok {
			out[i] = clone(v)
			continue
		}
		missing = append(missing, text)
		positions = append(positions, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := p.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, v := range vecs {
		out[positions[j]] = v
		p.cache.Add(key(missing[j]), clone(v))
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (p *EmbeddingProvider) Len() int {
	return p.cache.Len()
}

// Dimension returns the inner provider's vector size.
func (p *EmbeddingProvider) Dimension() int {
	return p.inner.Dimension()
}

// Name returns the inner provider's name so stored vectors stay comparable.
func (p *EmbeddingProvider) Name() string {
	return p.inner.Name()
}

// Ping checks the inner provider.
func (p *EmbeddingProvider) Ping(ctx context.Context) error {
	return p.inner.Ping(ctx)
}

// Close purges the cache and closes the inner provider.
func (p *EmbeddingProvider) Close() error {
	p.cache.Purge()
	return p.inner.Close()
}

func clone(v []float32) []float32 {
	return append([]float32(nil), v...)
}
