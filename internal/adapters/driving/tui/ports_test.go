package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	Results []domain.ScoredDocument
	Err     error
	Method  domain.SearchMethod
	Query   string
}

func (m *MockRetrievalService) SemanticSearch(_ context.Context, query string, _ int) ([]domain.ScoredDocument, error) {
	m.Method, m.Query = domain.SearchMethodSemantic, query
	return m.Results, m.Err
}

func (m *MockRetrievalService) KeywordSearch(_ context.Context, query string, _ int) ([]domain.ScoredDocument, error) {
	m.Method, m.Query = domain.SearchMethodKeyword, query
	return m.Results, m.Err
}

func (m *MockRetrievalService) HybridSearch(
	_ context.Context, query string, _ domain.HybridOptions,
) ([]domain.ScoredDocument, error) {
	m.Method, m.Query = domain.SearchMethodHybrid, query
	return m.Results, m.Err
}

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	Response *domain.QueryResponse
	Err      error
	Text     string
}

func (m *MockQueryService) Query(_ context.Context, text string) (*domain.QueryResponse, error) {
	m.Text = text
	return m.Response, m.Err
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	Docs     []domain.Document
	StatsVal *domain.StoreStats
	Err      error
}

func (m *MockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.Docs {
		if m.Docs[i].ID == id {
			return &m.Docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.Docs, m.Err
}

func (m *MockDocumentService) ListByTag(_ context.Context, _ string) ([]domain.Document, error) {
	return m.Docs, m.Err
}

func (m *MockDocumentService) Stats(_ context.Context) (*domain.StoreStats, error) {
	if m.StatsVal == nil {
		return &domain.StoreStats{}, m.Err
	}
	return m.StatsVal, m.Err
}

func (m *MockDocumentService) Details(ctx context.Context, id string) (*driving.DocumentDetails, error) {
	doc, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &driving.DocumentDetails{Document: *doc, ChunkCount: 2}, nil
}

func (m *MockDocumentService) Open(_ context.Context, _ string) error {
	return m.Err
}

func validPorts() *Ports {
	return &Ports{
		Retrieval:     &MockRetrievalService{},
		Query:         &MockQueryService{},
		Document:      &MockDocumentService{},
		SearchOptions: domain.DefaultRetrievalSettings().HybridOptions(),
	}
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Ports)
		wantErr error
	}{
		{name: "valid", mutate: func(*Ports) {}},
		{name: "sync is optional", mutate: func(p *Ports) { p.Sync = nil }},
		{name: "missing retrieval", mutate: func(p *Ports) { p.Retrieval = nil }, wantErr: ErrMissingRetrievalService},
		{name: "missing query", mutate: func(p *Ports) { p.Query = nil }, wantErr: ErrMissingQueryService},
		{name: "missing document", mutate: func(p *Ports) { p.Document = nil }, wantErr: ErrMissingDocumentService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPorts()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
