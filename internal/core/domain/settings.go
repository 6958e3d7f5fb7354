package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// ContextFormat selects how retrieved documents are rendered into a prompt.
type ContextFormat string

// Available context formats.
const (
	// ContextFormatStructured renders explicit per-document sections.
	ContextFormatStructured ContextFormat = "structured"

	// ContextFormatNatural renders a prose summary referencing titles.
	ContextFormatNatural ContextFormat = "natural"

	// ContextFormatMinimal renders concatenated excerpts only.
	ContextFormatMinimal ContextFormat = "minimal"
)

// IsValid returns true if the format is recognised.
func (f ContextFormat) IsValid() bool {
	switch f {
	case ContextFormatStructured, ContextFormatNatural, ContextFormatMinimal:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f ContextFormat) String() string {
	return string(f)
}

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderStub is the deterministic in-process embedder.
	AIProviderStub AIProvider = "stub"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API. It only generates.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderStub, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// CanEmbed returns true if the provider produces embeddings.
func (p AIProvider) CanEmbed() bool {
	switch p {
	case AIProviderStub, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// CanGenerate returns true if the provider answers questions.
func (p AIProvider) CanGenerate() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs on the local machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderStub || p == AIProviderOllama
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderStub:
		return "Stub (deterministic, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// RetrievalSettings is the recognised retrieval configuration surface.
type RetrievalSettings struct {
	// MaxResults is the number of documents retrieved per query.
	MaxResults int

	// SearchThreshold drops hybrid results scoring below it.
	SearchThreshold float64

	// SemanticWeight scales semantic scores in hybrid merge.
	SemanticWeight float64

	// KeywordWeight scales keyword scores in hybrid merge.
	KeywordWeight float64

	// MaxContextLength bounds the rendered context in characters.
	MaxContextLength int

	// ContextFormat selects the rendering shape.
	ContextFormat ContextFormat

	// AllowEmptyContext tolerates empty primary retrieval without running the fallback ladder.
	AllowEmptyContext bool

	// RequireMinimumResults logs a warning when fewer documents are retrieved.
	RequireMinimumResults int

	// SearchTimeout bounds each retrieval attempt.
	SearchTimeout time.Duration
}

// DefaultRetrievalSettings returns the default retrieval configuration.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		MaxResults:            5,
		SearchThreshold:       0,
		SemanticWeight:        0.7,
		KeywordWeight:         0.3,
		MaxContextLength:      4000,
		ContextFormat:         ContextFormatStructured,
		AllowEmptyContext:     false,
		RequireMinimumResults: 1,
		SearchTimeout:         5 * time.Second,
	}
}

// Validate checks the settings for values the engine cannot honour.
func (r RetrievalSettings) Validate() error {
	if r.MaxResults <= 0 {
		return fmt.Errorf("%w: max results must be positive", ErrInvalidInput)
	}
	if r.SemanticWeight < 0 || r.KeywordWeight < 0 {
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidInput)
	}
	if r.MaxContextLength <= 0 {
		return fmt.Errorf("%w: max context length must be positive", ErrInvalidInput)
	}
	if !r.ContextFormat.IsValid() {
		return fmt.Errorf("%w: unknown context format %q", ErrInvalidInput, r.ContextFormat)
	}
	if r.SearchTimeout <= 0 {
		return fmt.Errorf("%w: search timeout must be positive", ErrInvalidInput)
	}
	return nil
}

// HybridOptions returns the hybrid search options implied by the settings.
func (r RetrievalSettings) HybridOptions() HybridOptions {
	return HybridOptions{
		Limit:          r.MaxResults,
		SemanticWeight: r.SemanticWeight,
		KeywordWeight:  r.KeywordWeight,
		Threshold:      r.SearchThreshold,
	}
}

// ChunkSettings configures document chunking.
type ChunkSettings struct {
	// Size is the content length above which documents are chunked.
	Size int

	// Overlap is the number of trailing characters repeated in the next chunk.
	Overlap int
}

// DefaultChunkSettings returns the default chunking configuration.
func DefaultChunkSettings() ChunkSettings {
	return ChunkSettings{Size: 1000, Overlap: 200}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model default vector size.
	Dimensions int

	// CacheSize is the number of query embeddings kept in memory. Zero disables caching.
	CacheSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.CanEmbed() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI and Anthropic).
	APIKey string
}

// IsConfigured returns true if the generation provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.CanGenerate() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Settings is the complete workspace configuration.
type Settings struct {
	Retrieval RetrievalSettings
	Chunking  ChunkSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
}

// DefaultSettings returns the default configuration for a new workspace.
func DefaultSettings() Settings {
	return Settings{
		Retrieval: DefaultRetrievalSettings(),
		Chunking:  DefaultChunkSettings(),
		Embedding: EmbeddingSettings{Provider: AIProviderStub, CacheSize: 256},
	}
}
