package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestContextFormat_IsValid tests recognised context formats
func TestContextFormat_IsValid(t *testing.T) {
	tests := []struct {
		format ContextFormat
		want   bool
	}{
		{ContextFormatStructured, true},
		{ContextFormatNatural, true},
		{ContextFormatMinimal, true},
		{ContextFormat(""), false},
		{ContextFormat("xml"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.IsValid())
			assert.Equal(t, string(tt.format), tt.format.String())
		})
	}
}

// TestAIProvider tests provider classification
func TestAIProvider(t *testing.T) {
	tests := []struct {
		provider    AIProvider
		valid       bool
		embeds      bool
		generates   bool
		needsKey    bool
		local       bool
		description string
	}{
		{AIProviderStub, true, true, false, false, true, "Stub (deterministic, offline)"},
		{AIProviderOllama, true, true, true, false, true, "Ollama (local)"},
		{AIProviderOpenAI, true, true, true, true, false, "OpenAI (cloud)"},
		{AIProviderAnthropic, true, false, true, true, false, "Anthropic (cloud)"},
		{AIProvider("cohere"), false, false, false, false, false, unknownDescription},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.embeds, tt.provider.CanEmbed())
			assert.Equal(t, tt.generates, tt.provider.CanGenerate())
			assert.Equal(t, tt.needsKey, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.local, tt.provider.IsLocal())
			assert.Equal(t, tt.description, tt.provider.Description())
		})
	}
}

// TestDefaultSettings tests the new-workspace configuration
func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 5, s.Retrieval.MaxResults)
	assert.InDelta(t, 0.7, s.Retrieval.SemanticWeight, 1e-9)
	assert.InDelta(t, 0.3, s.Retrieval.KeywordWeight, 1e-9)
	assert.Equal(t, 4000, s.Retrieval.MaxContextLength)
	assert.Equal(t, ContextFormatStructured, s.Retrieval.ContextFormat)
	assert.False(t, s.Retrieval.AllowEmptyContext)
	assert.Equal(t, 1, s.Retrieval.RequireMinimumResults)
	assert.Equal(t, 5*time.Second, s.Retrieval.SearchTimeout)
	assert.NoError(t, s.Retrieval.Validate())

	assert.Equal(t, ChunkSettings{Size: 1000, Overlap: 200}, s.Chunking)
	assert.Equal(t, AIProviderStub, s.Embedding.Provider)
	assert.Equal(t, 256, s.Embedding.CacheSize)
	assert.True(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured())
}

// TestRetrievalSettings_Validate tests rejected values
func TestRetrievalSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RetrievalSettings)
	}{
		{"zero results", func(r *RetrievalSettings) { r.MaxResults = 0 }},
		{"negative semantic weight", func(r *RetrievalSettings) { r.SemanticWeight = -0.1 }},
		{"negative keyword weight", func(r *RetrievalSettings) { r.KeywordWeight = -1 }},
		{"zero context length", func(r *RetrievalSettings) { r.MaxContextLength = 0 }},
		{"unknown format", func(r *RetrievalSettings) { r.ContextFormat = "xml" }},
		{"zero timeout", func(r *RetrievalSettings) { r.SearchTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRetrievalSettings()
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
		})
	}

	t.Run("zero weights are allowed", func(t *testing.T) {
		r := DefaultRetrievalSettings()
		r.SemanticWeight = 0
		r.KeywordWeight = 0
		assert.NoError(t, r.Validate())
	})
}

// TestRetrievalSettings_HybridOptions tests the options mapping
func TestRetrievalSettings_HybridOptions(t *testing.T) {
	r := DefaultRetrievalSettings()
	r.SearchThreshold = 0.2

	assert.Equal(t, HybridOptions{
		Limit:          5,
		SemanticWeight: 0.7,
		KeywordWeight:  0.3,
		Threshold:      0.2,
	}, r.HybridOptions())
}

// TestEmbeddingSettings_IsConfigured tests provider and key requirements
func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		want     bool
	}{
		{"stub", EmbeddingSettings{Provider: AIProviderStub}, true},
		{"ollama", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"anthropic cannot embed", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "sk"}, false},
		{"unset", EmbeddingSettings{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.IsConfigured())
		})
	}
}

// TestLLMSettings_IsConfigured tests that the stub cannot generate
func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		want     bool
	}{
		{"stub", LLMSettings{Provider: AIProviderStub}, false},
		{"ollama", LLMSettings{Provider: AIProviderOllama}, true},
		{"openai without key", LLMSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"anthropic without key", LLMSettings{Provider: AIProviderAnthropic}, false},
		{"anthropic with key", LLMSettings{Provider: AIProviderAnthropic, APIKey: "sk-ant"}, true},
		{"unset", LLMSettings{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.IsConfigured())
		})
	}
}
