package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// uriScheme is the custom URI scheme for recall resources.
const uriScheme = "recall://"

// documentInfo is the JSON shape of a document in listings.
type documentInfo struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Path      string   `json:"path"`
	URI       string   `json:"uri"`
	Tags      []string `json:"tags,omitempty"`
	IndexedAt string   `json:"indexed_at,omitempty"`
}

// registerResources registers resource handlers for the configured ports.
func (s *Server) registerResources() {
	if s.ports.Document != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "documents",
			Name:        "documents",
			Description: "All indexed documents",
			MIMEType:    "application/json",
		}, s.handleDocumentsResource)

		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "stats",
			Name:        "stats",
			Description: "Index statistics",
			MIMEType:    "application/json",
		}, s.handleStatsResource)

		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "tags/{tag}/documents",
			Name:        "tag-documents",
			Description: "Documents carrying a specific tag",
			MIMEType:    "application/json",
		}, s.handleTagDocumentsResource)

		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "documents/{documentId}",
			Name:        "document-content",
			Description: "Content of a specific document",
			MIMEType:    "text/plain",
		}, s.handleDocumentContentResource)
	}

	if s.ports.Memory != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "topics",
			Name:        "topics",
			Description: "Recurring query topics and where they were answered",
			MIMEType:    "application/json",
		}, s.handleTopicsResource)
	}
}

// handleDocumentsResource lists all indexed documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return jsonResult(req.Params.URI, documentInfos(docs))
}

// handleTagDocumentsResource lists documents carrying the tag in the URI.
func (s *Server) handleTagDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// recall://tags/{tag}/documents
	tag := extractTag(req.Params.URI)
	if tag == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Document.ListByTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return jsonResult(req.Params.URI, documentInfos(docs))
}

// handleDocumentContentResource returns the content of a specific document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// recall://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Content,
		}},
	}, nil
}

// handleStatsResource returns index statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Document.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}

	return jsonResult(req.Params.URI, struct {
		Documents            int            `json:"documents"`
		Chunks               int            `json:"chunks"`
		Embeddings           int            `json:"embeddings"`
		Tags                 int            `json:"tags"`
		SearchPatterns       int            `json:"search_patterns"`
		EmbeddingsByProvider map[string]int `json:"embeddings_by_provider,omitempty"`
	}{
		Documents:            stats.Documents,
		Chunks:               stats.Chunks,
		Embeddings:           stats.Embeddings,
		Tags:                 stats.Tags,
		SearchPatterns:       stats.SearchPatterns,
		EmbeddingsByProvider: stats.EmbeddingsByProvider,
	})
}

// handleTopicsResource returns every recorded topic.
func (s *Server) handleTopicsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	topics, err := s.ports.Memory.TopicLocations(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}

	type topicInfo struct {
		Topic       string   `json:"topic"`
		Locations   []string `json:"locations"`
		Occurrences int      `json:"occurrences"`
	}
	infos := make([]topicInfo, len(topics))
	for i, t := range topics {
		infos[i] = topicInfo{Topic: t.Topic, Locations: t.Locations, Occurrences: t.Occurrences}
	}
	return jsonResult(req.Params.URI, infos)
}

func documentInfos(docs []domain.Document) []documentInfo {
	infos := make([]documentInfo, len(docs))
	for i := range docs {
		infos[i] = documentInfo{
			ID:    docs[i].ID,
			Title: docs[i].Title,
			Path:  docs[i].SourcePath,
			URI:   documentURI(docs[i].ID),
			Tags:  docs[i].Tags,
		}
		if !docs[i].IndexedAt.IsZero() {
			infos[i].IndexedAt = docs[i].IndexedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	return infos
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// documentURI returns the resource URI for a document ID.
func documentURI(id string) string {
	return uriScheme + "documents/" + id
}

// extractTag extracts the tag from a URI like recall://tags/{tag}/documents.
func extractTag(uri string) string {
	const prefix = uriScheme + "tags/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	tag, err := url.PathUnescape(strings.TrimSuffix(uri, suffix))
	if err != nil {
		return ""
	}
	return tag
}

// extractDocumentID extracts the document ID from a URI like recall://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
