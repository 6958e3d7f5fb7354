// Package stub provides a deterministic, offline embedding provider.
//
// Vectors are built by feature hashing: every token and adjacent token pair
// is hashed into one of Dimensions buckets with a hash-derived sign, then the
// vector is L2-normalised. Texts that share vocabulary have positive cosine
// similarity, which is enough for tests and for running without a model.
package stub

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/scoring"
)

// Ensure EmbeddingProvider implements the interface.
var _ driven.EmbeddingProvider = (*EmbeddingProvider)(nil)

// DefaultDimensions is the default vector size.
const DefaultDimensions = 256

// EmbeddingProvider generates hashed bag-of-words embeddings.
type EmbeddingProvider struct {
	dimensions int
}

// New creates a stub provider. Non-positive dimensions use DefaultDimensions.
func New(dimensions int) *EmbeddingProvider {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingProvider{dimensions: dimensions}
}

// Embed returns the hashed embedding of text. Empty text yields a zero vector.
func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewEmbeddingError(p.Name(), err)
	}

	vec := make([]float32, p.dimensions)
	tokens := scoring.Tokenize(text)
	for i, tok := range tokens {
		p.add(vec, tok, 1)
		if i > 0 {
			p.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	return scoring.Normalize(vec), nil
}

func (p *EmbeddingProvider) add(vec []float32, feature string, weight float32) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum32()

	bucket := int(sum % uint32(p.dimensions))
	if sum&(1<<31) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

// EmbedBatch embeds each text in order.
func (p *EmbeddingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimension returns the embedding vector size.
func (p *EmbeddingProvider) Dimension() int {
	return p.dimensions
}

// Name identifies the provider and its dimension.
func (p *EmbeddingProvider) Name() string {
	return fmt.Sprintf("stub/hash-%d", p.dimensions)
}

// Ping always succeeds.
func (p *EmbeddingProvider) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (p *EmbeddingProvider) Close() error {
	return nil
}
