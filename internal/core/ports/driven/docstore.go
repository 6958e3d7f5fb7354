package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// UpsertInput is one atomic document write.
type UpsertInput struct {
	// Document carries content and metadata. Checksum is recomputed by the store.
	Document domain.Document

	// Embedding replaces the stored document embedding. When nil, any stored
	// embedding is deleted so that no vector outlives its content version.
	Embedding *domain.Embedding

	// Chunks replace the stored chunks of the document.
	Chunks []domain.Chunk

	// ReplaceTags replaces the stored tag set with Document.Tags.
	// When false, existing tags are kept.
	ReplaceTags bool
}

// DocumentStore persists documents, chunks, embeddings and tags.
// Multi-table mutations are atomic. Every method returns
// domain.ErrNotInitialized when the store is not open.
type DocumentStore interface {
	// Upsert inserts or replaces a document and its embedding in one transaction.
	// It recomputes the checksum and resets IndexedAt.
	Upsert(ctx context.Context, in UpsertInput) error

	// GetReindexCandidates compares on-disk content checksums to stored checksums.
	GetReindexCandidates(ctx context.Context, paths []string) ([]domain.ReindexCandidate, error)

	// Search ranks documents embedded by providerName by cosine similarity.
	// Embeddings from other providers are never compared.
	Search(ctx context.Context, query []float32, providerName string, limit int) ([]domain.ScoredDocument, error)

	// KeywordSearch ranks documents by normalised keyword frequency.
	KeywordSearch(ctx context.Context, keywords []string, limit int) ([]domain.ScoredDocument, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetEmbedding retrieves the stored embedding of a document.
	GetEmbedding(ctx context.Context, documentID string) (*domain.Embedding, error)

	// GetChunks retrieves the chunks of a document ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// List returns all documents ordered by source path.
	List(ctx context.Context) ([]domain.Document, error)

	// ListByTag returns documents carrying tag.
	ListByTag(ctx context.Context, tag string) ([]domain.Document, error)

	// ListStale returns IDs of documents without an embedding from providerName.
	ListStale(ctx context.Context, providerName string) ([]string, error)

	// RecordAccess increments access counters of the given documents.
	RecordAccess(ctx context.Context, ids []string, at time.Time) error

	// Remove deletes a document and cascades to its embedding, chunks and tags.
	Remove(ctx context.Context, id string) error

	// Stats summarises the store contents.
	Stats(ctx context.Context) (*domain.StoreStats, error)
}

// PatternStore persists search memory.
type PatternStore interface {
	// RecordPattern adds one occurrence of (query, files). Repeated pairs
	// increment counters instead of creating new rows.
	RecordPattern(ctx context.Context, query string, files []string, success bool, at time.Time) error

	// ListPatterns returns all patterns ordered by last use, newest first.
	ListPatterns(ctx context.Context) ([]domain.SearchPattern, error)

	// PrunePatterns deletes patterns last used before cutoff whose success
	// rate is below minRate. It returns the number of deleted rows.
	PrunePatterns(ctx context.Context, cutoff time.Time, minRate float64) (int, error)
}
