// Package ai provides factory functions for creating embedding providers and generators.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/recall/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/custodia-labs/recall/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/recall/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/recall/internal/adapters/driven/embedding/stub"
	anthropicllm "github.com/custodia-labs/recall/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/recall/internal/adapters/driven/llm/breaker"
	ollamallm "github.com/custodia-labs/recall/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/recall/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	Embedding driven.EmbeddingProvider
	Generator driven.Generator // nil when generation is not configured.
	Warnings  []string         // Non-fatal issues, e.g. an unusable generator.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.Embedding != nil {
		r.Embedding.Close()
	}
	if r.Generator != nil {
		r.Generator.Close()
	}
}

// Initialise builds the embedding provider and generator for settings.
// The embedding provider is mandatory; a generator that cannot be built is
// reported as a warning and left nil so queries still return context.
func Initialise(settings domain.Settings, prompts driven.PromptStore) (*InitResult, error) {
	emb, err := CreateEmbeddingProvider(settings.Embedding)
	if err != nil {
		return nil, err
	}
	result := &InitResult{Embedding: emb}

	gen, err := CreateGenerator(settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("generation disabled: %v", err))
		logger.Warn("generation disabled: %v", err)
	case gen != nil:
		if aware, ok := gen.(driven.PromptStoreAware); ok && prompts != nil {
			aware.SetPromptStore(prompts)
		}
		result.Generator = breaker.Wrap(gen, breaker.Config{})
	}
	return result, nil
}

// CreateEmbeddingProvider creates the embedding provider selected by settings,
// wrapped in an LRU cache when CacheSize is positive.
func CreateEmbeddingProvider(settings domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not configured. Run 'recall settings' to fix",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	var provider driven.EmbeddingProvider
	switch settings.Provider {
	case domain.AIProviderStub:
		provider = stub.New(settings.Dimensions)

	case domain.AIProviderOllama:
		provider = ollamaembed.New(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderOpenAI:
		p, err := openaiembed.New(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		provider = p

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	if settings.CacheSize > 0 {
		cached, err := cache.Wrap(provider, settings.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating embedding cache: %w", err)
		}
		return cached, nil
	}
	return provider, nil
}

// CreateGenerator creates the generator selected by settings.
// Returns nil if generation is not configured.
func CreateGenerator(settings domain.LLMSettings) (driven.Generator, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.New(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		gen, err := openaillm.New(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil

	case domain.AIProviderAnthropic:
		gen, err := anthropicllm.New(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a provider and pinging it.
func ValidateEmbeddingConfig(settings domain.EmbeddingSettings) error {
	provider, err := CreateEmbeddingProvider(settings)
	if err != nil {
		return err
	}
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := provider.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLMConfig validates a generation configuration by creating a generator and pinging it.
func ValidateLLMConfig(settings domain.LLMSettings) error {
	gen, err := CreateGenerator(settings)
	if err != nil {
		return err
	}
	if gen == nil {
		return nil
	}
	defer gen.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := gen.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrGenerationUnavailable, err)
	}
	return nil
}
