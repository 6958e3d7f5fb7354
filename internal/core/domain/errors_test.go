package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Messages tests sentinel error text
func TestErrors_Messages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not found"},
		{ErrInvalidInput, "invalid input"},
		{ErrNotInitialized, "store not initialized"},
		{ErrEmbeddingFailure, "embedding failure"},
		{ErrDimensionMismatch, "dimension mismatch"},
		{ErrRetrievalTimeout, "retrieval timeout"},
		{ErrRetrievalFailure, "retrieval failure"},
		{ErrGenerationUnavailable, "generation unavailable"},
		{ErrEmbeddingUnavailable, "embedding service unavailable"},
		{ErrUnsupportedOperation, "unsupported operation"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

// TestErrors_Uniqueness tests that no two sentinels match each other
func TestErrors_Uniqueness(t *testing.T) {
	all := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrNotInitialized,
		ErrEmbeddingFailure,
		ErrDimensionMismatch,
		ErrRetrievalTimeout,
		ErrRetrievalFailure,
		ErrGenerationUnavailable,
		ErrEmbeddingUnavailable,
		ErrUnsupportedOperation,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v matched %v", a, b)
			}
		}
	}
}

// TestErrors_WithWrapping tests sentinels survive fmt wrapping
func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmt.Errorf("get doc_1: %w", ErrNotFound)

	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrInvalidInput)
}

// TestEmbeddingError tests the provider failure type
func TestEmbeddingError(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(NewEmbeddingError("ollama", cause))

	assert.EqualError(t, err, "embedding failure (ollama): connection refused")
	assert.ErrorIs(t, err, ErrEmbeddingFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEmbeddingUnavailable)

	var embErr *EmbeddingError
	wrapped := fmt.Errorf("index a.md: %w", err)
	assert.ErrorAs(t, wrapped, &embErr)
	assert.Equal(t, "ollama", embErr.Provider)
	assert.ErrorIs(t, wrapped, ErrEmbeddingFailure)
}
