package driven

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// DocumentSource enumerates and reads the text files of a workspace.
// Content is returned verbatim so that stored checksums match the bytes on
// disk; metadata such as titles and tags is extracted alongside.
type DocumentSource interface {
	// Root returns the workspace root directory.
	Root() string

	// Walk returns the indexable file paths under the root in sorted order.
	Walk(ctx context.Context) ([]string, error)

	// Read returns the content and metadata of one file.
	Read(ctx context.Context, path string) (string, domain.IngestMetadata, error)

	// Indexable reports whether path has a supported file type.
	Indexable(path string) bool
}
