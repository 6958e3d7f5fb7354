package driven

import "github.com/custodia-labs/recall/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	ValidateEmbedding(config domain.EmbeddingSettings) error

	// ValidateLLM validates a generation configuration by pinging the provider.
	// Returns nil if generation is not configured.
	ValidateLLM(config domain.LLMSettings) error
}
