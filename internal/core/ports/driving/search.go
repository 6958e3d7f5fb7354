package driving

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// RetrievalService provides search capabilities to external actors.
type RetrievalService interface {
	// SemanticSearch ranks documents by vector similarity to query.
	SemanticSearch(ctx context.Context, query string, limit int) ([]domain.ScoredDocument, error)

	// KeywordSearch ranks documents by keyword frequency.
	KeywordSearch(ctx context.Context, query string, limit int) ([]domain.ScoredDocument, error)

	// HybridSearch merges semantic and keyword rankings with weights.
	HybridSearch(ctx context.Context, query string, opts domain.HybridOptions) ([]domain.ScoredDocument, error)
}

// QueryService answers user queries with mandatory retrieval.
type QueryService interface {
	// Query retrieves context for text and forwards it to generation.
	Query(ctx context.Context, text string) (*domain.QueryResponse, error)
}

// SearchMemoryService exposes historical query outcomes.
type SearchMemoryService interface {
	// Suggest returns past queries related to query.
	Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)

	// TopicLocations returns recurring topics and where they were answered.
	TopicLocations(ctx context.Context, minOccurrences int) ([]domain.TopicLocation, error)

	// Prune removes old, unsuccessful patterns.
	Prune(ctx context.Context) (int, error)
}
