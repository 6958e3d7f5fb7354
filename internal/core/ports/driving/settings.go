package driving

import "github.com/custodia-labs/recall/internal/core/domain"

// SettingsService manages workspace settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (domain.Settings, error)

	// Set parses and stores one setting by its dot-notation key.
	// Invalid values are rejected without being persisted.
	Set(key, value string) error

	// Keys returns the recognised setting keys.
	Keys() []string

	// SetEmbeddingProvider configures the embedding provider with model defaults.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the generation provider with model defaults.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the settings for values the engine cannot honour.
	Validate() error
}
