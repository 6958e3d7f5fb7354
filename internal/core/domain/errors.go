package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotInitialized indicates the store was used before setup or after Close.
	ErrNotInitialized = errors.New("store not initialized")

	// ErrEmbeddingFailure indicates a provider could not produce a vector.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrDimensionMismatch indicates vectors of different lengths were compared.
	// This is always a programming error and is never recovered.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrRetrievalTimeout indicates retrieval exceeded the configured search timeout.
	ErrRetrievalTimeout = errors.New("retrieval timeout")

	// ErrRetrievalFailure indicates a generic search-layer failure.
	ErrRetrievalFailure = errors.New("retrieval failure")

	// ErrGenerationUnavailable indicates no generation capability is configured.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrUnsupportedOperation indicates an unknown workspace operation or tool.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// EmbeddingError is returned when a provider fails to embed text.
// It matches ErrEmbeddingFailure with errors.Is.
type EmbeddingError struct {
	// Provider is the name of the failing provider.
	Provider string

	// Err is the underlying cause.
	Err error
}

// NewEmbeddingError wraps err as an EmbeddingError for provider.
func NewEmbeddingError(provider string, err error) *EmbeddingError {
	return &EmbeddingError{Provider: provider, Err: err}
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failure (%s): %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEmbeddingFailure.
func (e *EmbeddingError) Is(target error) bool {
	return target == ErrEmbeddingFailure
}
