package driven

import "context"

// EmbeddingProvider converts text into a fixed-dimension vector.
//
// Implementations include:
//   - stub: deterministic feature hashing, for tests and offline use
//   - ollama: a local on-device model
//   - openai: a remote API-backed model
//
// Vectors produced by different providers are not comparable. Failures are
// returned as *domain.EmbeddingError.
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector size.
	Dimension() int

	// Name identifies the provider and model, e.g. "ollama/nomic-embed-text".
	// Stored embeddings are tagged with this value.
	Name() string

	// Ping validates the provider is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
