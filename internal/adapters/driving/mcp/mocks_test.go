package mcp

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.ScoredDocument
	err     error

	method domain.SearchMethod
	limit  int
	opts   domain.HybridOptions
}

func (m *mockRetrievalService) SemanticSearch(_ context.Context, _ string, limit int) ([]domain.ScoredDocument, error) {
	m.method, m.limit = domain.SearchMethodSemantic, limit
	return m.results, m.err
}

func (m *mockRetrievalService) KeywordSearch(_ context.Context, _ string, limit int) ([]domain.ScoredDocument, error) {
	m.method, m.limit = domain.SearchMethodKeyword, limit
	return m.results, m.err
}

func (m *mockRetrievalService) HybridSearch(
	_ context.Context,
	_ string,
	opts domain.HybridOptions,
) ([]domain.ScoredDocument, error) {
	m.method, m.limit, m.opts = domain.SearchMethodHybrid, opts.Limit, opts
	return m.results, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	response *domain.QueryResponse
	err      error
	text     string
}

func (m *mockQueryService) Query(_ context.Context, text string) (*domain.QueryResponse, error) {
	m.text = text
	return m.response, m.err
}

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	report *domain.BatchReport
	err    error

	synced bool
	paths  []string
}

func (m *mockSyncService) Sync(_ context.Context) (*domain.BatchReport, error) {
	m.synced = true
	return m.report, m.err
}

func (m *mockSyncService) IndexPaths(_ context.Context, paths []string) (*domain.BatchReport, error) {
	m.paths = paths
	return m.report, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	stats     *domain.StoreStats
	details   *driving.DocumentDetails
	err       error
	tag       string
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) ListByTag(_ context.Context, tag string) ([]domain.Document, error) {
	m.tag = tag
	return m.documents, m.err
}

func (m *mockDocumentService) Stats(_ context.Context) (*domain.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockDocumentService) Details(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	return m.details, m.err
}

func (m *mockDocumentService) Open(_ context.Context, _ string) error {
	return m.err
}

// mockMemoryService is a mock implementation of driving.SearchMemoryService.
type mockMemoryService struct {
	suggestions []domain.Suggestion
	topics      []domain.TopicLocation
	err         error
	limit       int
}

func (m *mockMemoryService) Suggest(_ context.Context, _ string, limit int) ([]domain.Suggestion, error) {
	m.limit = limit
	return m.suggestions, m.err
}

func (m *mockMemoryService) TopicLocations(_ context.Context, _ int) ([]domain.TopicLocation, error) {
	return m.topics, m.err
}

func (m *mockMemoryService) Prune(_ context.Context) (int, error) {
	return 0, m.err
}
