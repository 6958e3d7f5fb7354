package driving

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// IngestionService accepts content from document-source collaborators.
type IngestionService interface {
	// Submit indexes content for path, skipping unchanged content.
	Submit(ctx context.Context, path, content string, meta domain.IngestMetadata) (domain.IndexOutcome, error)

	// Remove deletes the document derived from path.
	Remove(ctx context.Context, path string) error
}

// DocumentService provides read access to indexed documents.
type DocumentService interface {
	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all indexed documents.
	List(ctx context.Context) ([]domain.Document, error)

	// ListByTag returns documents carrying tag.
	ListByTag(ctx context.Context, tag string) ([]domain.Document, error)

	// Stats summarises the index.
	Stats(ctx context.Context) (*domain.StoreStats, error)

	// Details returns a document with index metadata for display.
	Details(ctx context.Context, id string) (*DocumentDetails, error)

	// Open opens the document source in the default application.
	Open(ctx context.Context, id string) error
}

// DocumentDetails is a document plus what the index holds for it.
type DocumentDetails struct {
	domain.Document

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// EmbeddingProvider names the provider of the stored vector, if any.
	EmbeddingProvider string

	// Dimensions is the stored vector length.
	Dimensions int
}

// WorkspaceService executes workspace operations.
type WorkspaceService interface {
	// Execute runs one operation against the workspace.
	Execute(ctx context.Context, op domain.Operation) (*domain.OperationResult, error)
}
