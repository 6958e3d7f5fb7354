package services

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService provides read access to indexed documents.
type DocumentService struct {
	docStore driven.DocumentStore
	opener   func(target string) error
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{
		docStore: docStore,
		opener:   openURL,
	}
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.Get(ctx, id)
}

// List returns all indexed documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.List(ctx)
}

// ListByTag returns documents carrying tag.
func (s *DocumentService) ListByTag(ctx context.Context, tag string) ([]domain.Document, error) {
	return s.docStore.ListByTag(ctx, tag)
}

// Stats summarises the index.
func (s *DocumentService) Stats(ctx context.Context) (*domain.StoreStats, error) {
	return s.docStore.Stats(ctx)
}

// Details returns a document with its chunk count and embedding provider.
func (s *DocumentService) Details(ctx context.Context, id string) (*driving.DocumentDetails, error) {
	doc, err := s.docStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	chunks, err := s.docStore.GetChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	details := &driving.DocumentDetails{
		Document:   *doc,
		ChunkCount: len(chunks),
	}
	emb, err := s.docStore.GetEmbedding(ctx, id)
	switch {
	case err == nil:
		details.EmbeddingProvider = emb.ProviderName
		details.Dimensions = emb.Dimension()
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load embedding: %w", err)
	}
	return details, nil
}

// Open opens the document source in the default application.
func (s *DocumentService) Open(ctx context.Context, id string) error {
	doc, err := s.docStore.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.opener(strings.TrimPrefix(doc.SourcePath, "file://"))
}

// openURL opens a URL/path using the system default handler.
func openURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("%w: open on %s", domain.ErrUnsupportedOperation, runtime.GOOS)
	}

	return cmd.Start()
}
