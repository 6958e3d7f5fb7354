// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// Generator is the external language-generation capability.
// The orchestrator treats it as opaque.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI (cloud)
type Generator interface {
	// Generate produces an answer for prompt given the rendered retrieval
	// context, which may be empty.
	Generate(ctx context.Context, prompt, retrieved string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
