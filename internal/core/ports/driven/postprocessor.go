package driven

import "github.com/custodia-labs/recall/internal/core/domain"

// Chunker splits document content into chunks.
type Chunker interface {
	// Threshold returns the content length above which documents are chunked.
	Threshold() int

	// Split returns the chunks of content. Content at or below Threshold
	// yields no chunks.
	Split(documentID, content string) []domain.Chunk
}
