package driven

// ConfigStore persists flat dot-notation configuration keys
// ("retrieval.max_results"). Values keep the type the backend decoded;
// callers convert.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// Set stores a configuration value.
	// File-backed stores persist immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
