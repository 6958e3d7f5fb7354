package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyMaxResults        = "retrieval.max_results"
	keySearchThreshold   = "retrieval.search_threshold"
	keySemanticWeight    = "retrieval.semantic_weight"
	keyKeywordWeight     = "retrieval.keyword_weight"
	keyMaxContextLength  = "retrieval.max_context_length"
	keyContextFormat     = "retrieval.context_format"
	keyAllowEmptyContext = "retrieval.allow_empty_context"
	keyRequireMinimum    = "retrieval.require_minimum_results"
	keySearchTimeout     = "retrieval.search_timeout_ms"
	keyChunkSize         = "chunking.size"
	keyChunkOverlap      = "chunking.overlap"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyEmbedCacheSize    = "embedding.cache_size"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
)

// API key environment variables, consulted when no key is stored.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
)

// apiKeyEnv maps cloud providers to their API key environment variable.
var apiKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    envOpenAIKey,
	domain.AIProviderAnthropic: envAnthropicKey,
}

// defaultOllamaURL is stored for local providers without a base URL.
const defaultOllamaURL = "http://localhost:11434"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

// settingKinds lists every recognised key and how its value is parsed.
var settingKinds = map[string]valueKind{
	keyMaxResults:        kindInt,
	keySearchThreshold:   kindFloat,
	keySemanticWeight:    kindFloat,
	keyKeywordWeight:     kindFloat,
	keyMaxContextLength:  kindInt,
	keyContextFormat:     kindString,
	keyAllowEmptyContext: kindBool,
	keyRequireMinimum:    kindInt,
	keySearchTimeout:     kindInt,
	keyChunkSize:         kindInt,
	keyChunkOverlap:      kindInt,
	keyEmbedProvider:     kindString,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyEmbedDimensions:   kindInt,
	keyEmbedCacheSize:    kindInt,
	keyLLMProvider:       kindString,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
}

var (
	defaultEmbeddingModels = map[domain.AIProvider]string{
		domain.AIProviderOllama: "nomic-embed-text",
		domain.AIProviderOpenAI: "text-embedding-3-small",
	}
	defaultLLMModels = map[domain.AIProvider]string{
		domain.AIProviderOllama:    "llama3.2",
		domain.AIProviderOpenAI:    "gpt-4o-mini",
		domain.AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
)

// SettingsService maps workspace configuration keys to domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// The validator is optional; without it CheckProviders is a no-op.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get returns the current settings with defaults applied.
func (s *SettingsService) Get() (domain.Settings, error) {
	return s.load(s.configStore.Get), nil
}

// load builds settings from lookup. Presence, not the zero value, decides
// whether a default applies.
func (s *SettingsService) load(lookup func(string) (any, bool)) domain.Settings {
	r := reader{lookup: lookup}
	d := domain.DefaultSettings()

	settings := domain.Settings{
		Retrieval: domain.RetrievalSettings{
			MaxResults:            r.getInt(keyMaxResults, d.Retrieval.MaxResults),
			SearchThreshold:       r.getFloat(keySearchThreshold, d.Retrieval.SearchThreshold),
			SemanticWeight:        r.getFloat(keySemanticWeight, d.Retrieval.SemanticWeight),
			KeywordWeight:         r.getFloat(keyKeywordWeight, d.Retrieval.KeywordWeight),
			MaxContextLength:      r.getInt(keyMaxContextLength, d.Retrieval.MaxContextLength),
			ContextFormat:         domain.ContextFormat(r.getString(keyContextFormat, d.Retrieval.ContextFormat.String())),
			AllowEmptyContext:     r.getBool(keyAllowEmptyContext, d.Retrieval.AllowEmptyContext),
			RequireMinimumResults: r.getInt(keyRequireMinimum, d.Retrieval.RequireMinimumResults),
			SearchTimeout: time.Duration(r.getInt(keySearchTimeout,
				int(d.Retrieval.SearchTimeout/time.Millisecond))) * time.Millisecond,
		},
		Chunking: domain.ChunkSettings{
			Size:    r.getInt(keyChunkSize, d.Chunking.Size),
			Overlap: r.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   domain.AIProvider(r.getString(keyEmbedProvider, string(d.Embedding.Provider))),
			Model:      r.getString(keyEmbedModel, ""),
			BaseURL:    r.getString(keyEmbedBaseURL, ""),
			APIKey:     r.getString(keyEmbedAPIKey, ""),
			Dimensions: r.getInt(keyEmbedDimensions, d.Embedding.Dimensions),
			CacheSize:  r.getInt(keyEmbedCacheSize, d.Embedding.CacheSize),
		},
		LLM: domain.LLMSettings{
			Provider: domain.AIProvider(r.getString(keyLLMProvider, "")),
			Model:    r.getString(keyLLMModel, ""),
			BaseURL:  r.getString(keyLLMBaseURL, ""),
			APIKey:   r.getString(keyLLMAPIKey, ""),
		},
	}

	if env, ok := apiKeyEnv[settings.Embedding.Provider]; ok && settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = os.Getenv(env)
	}
	if env, ok := apiKeyEnv[settings.LLM.Provider]; ok && settings.LLM.APIKey == "" {
		settings.LLM.APIKey = os.Getenv(env)
	}
	return settings
}

// Keys returns the recognised setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses and stores one setting. The value is persisted only when the
// resulting settings validate.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	candidate := s.load(func(k string) (any, bool) {
		if k == key {
			return parsed, true
		}
		return s.configStore.Get(k)
	})
	if err := validateSettings(candidate); err != nil {
		return err
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func parseSetting(kind valueKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		return strconv.ParseInt(value, 10, 64)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	default:
		return value, nil
	}
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.CanEmbed() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		model = defaultEmbeddingModels[provider]
	}
	baseURL := ""
	if provider == domain.AIProviderOllama {
		baseURL = reader{lookup: s.configStore.Get}.getString(keyEmbedBaseURL, defaultOllamaURL)
	}

	return s.setAll(map[string]any{
		keyEmbedProvider: string(provider),
		keyEmbedModel:    model,
		keyEmbedBaseURL:  baseURL,
		keyEmbedAPIKey:   apiKey,
	})
}

// SetLLMProvider configures the generation provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.CanGenerate() {
		return fmt.Errorf("%w: provider %s cannot generate answers", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		model = defaultLLMModels[provider]
	}
	baseURL := ""
	if provider == domain.AIProviderOllama {
		baseURL = reader{lookup: s.configStore.Get}.getString(keyLLMBaseURL, defaultOllamaURL)
	}

	return s.setAll(map[string]any{
		keyLLMProvider: string(provider),
		keyLLMModel:    model,
		keyLLMBaseURL:  baseURL,
		keyLLMAPIKey:   apiKey,
	})
}

func (s *SettingsService) setAll(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.configStore.Set(k, values[k]); err != nil {
			// Resync with what is actually persisted.
			if loadErr := s.configStore.Load(); loadErr != nil {
				logger.Warn("reload config after failed save: %v", loadErr)
			}
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

// Validate checks the settings for values the engine cannot honour.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(settings)
}

func validateSettings(settings domain.Settings) error {
	if err := settings.Retrieval.Validate(); err != nil {
		return err
	}
	if settings.Chunking.Size <= 0 || settings.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunk size must be positive and overlap not negative", domain.ErrInvalidInput)
	}
	if !settings.Embedding.Provider.CanEmbed() {
		return fmt.Errorf("%w: %q is not an embedding provider", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidInput, settings.LLM.Provider)
	}
	return nil
}

// CheckProviders pings the configured embedding and generation providers.
func (s *SettingsService) CheckProviders() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := s.aiValidator.ValidateEmbedding(settings.Embedding); err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(settings.LLM)
}

// reader converts raw config values with defaults for missing keys.
type reader struct {
	lookup func(string) (any, bool)
}

func (r reader) getString(key, defaultVal string) string {
	val, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	if str, ok := val.(string); ok && str != "" {
		return str
	}
	return defaultVal
}

func (r reader) getInt(key string, defaultVal int) int {
	val, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultVal
	}
}

func (r reader) getFloat(key string, defaultVal float64) float64 {
	val, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return defaultVal
	}
}

func (r reader) getBool(key string, defaultVal bool) bool {
	val, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return defaultVal
}
