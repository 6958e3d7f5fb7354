package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// mockRetrieval records which ranking ran.
type mockRetrieval struct {
	results []domain.ScoredDocument
	err     error
	method  domain.SearchMethod
	query   string
	opts    domain.HybridOptions
}

func (m *mockRetrieval) SemanticSearch(_ context.Context, query string, limit int) ([]domain.ScoredDocument, error) {
	m.method, m.query, m.opts.Limit = domain.SearchMethodSemantic, query, limit
	return m.results, m.err
}

func (m *mockRetrieval) KeywordSearch(_ context.Context, query string, limit int) ([]domain.ScoredDocument, error) {
	m.method, m.query, m.opts.Limit = domain.SearchMethodKeyword, query, limit
	return m.results, m.err
}

func (m *mockRetrieval) HybridSearch(_ context.Context, query string, opts domain.HybridOptions) ([]domain.ScoredDocument, error) {
	m.method, m.query, m.opts = domain.SearchMethodHybrid, query, opts
	return m.results, m.err
}

// mockDocuments serves a single document.
type mockDocuments struct {
	driving.DocumentService
	doc    *domain.Document
	opened string
}

func (m *mockDocuments) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.doc == nil {
		return nil, domain.ErrNotFound
	}
	return m.doc, nil
}

func (m *mockDocuments) Details(_ context.Context, id string) (*driving.DocumentDetails, error) {
	return &driving.DocumentDetails{Document: domain.Document{ID: id}}, nil
}

func (m *mockDocuments) Open(_ context.Context, id string) error {
	m.opened = id
	return nil
}

func testResults() []domain.ScoredDocument {
	return []domain.ScoredDocument{
		{Document: domain.Document{ID: "doc_1", Title: "One", SourcePath: "one.md"}, Score: 0.9},
		{Document: domain.Document{ID: "doc_2", Title: "Two", SourcePath: "two.md"}, Score: 0.4},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newView(retrieval *mockRetrieval, docs *mockDocuments) *View {
	v := NewView(nil, nil, retrieval, docs, domain.HybridOptions{Limit: 4, SemanticWeight: 0.7, KeywordWeight: 0.3})
	v.SetDimensions(100, 40)
	return v
}

// submit types query and runs the resulting search command.
func submit(t *testing.T, v *View, query string) tea.Msg {
	t.Helper()
	v.SetQuery(query)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	return cmd()
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil, nil, domain.HybridOptions{})

	require.NotNil(t, v)
	assert.True(t, v.InputFocused())
	assert.Equal(t, domain.SearchMethodHybrid, v.Mode())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_HybridSearch(t *testing.T) {
	retrieval := &mockRetrieval{results: testResults()}
	v := newView(retrieval, &mockDocuments{})

	msg := submit(t, v, "kubernetes")
	assert.False(t, v.InputFocused())
	assert.Equal(t, domain.SearchMethodHybrid, retrieval.method)
	assert.Equal(t, "kubernetes", retrieval.query)
	assert.Equal(t, 0.7, retrieval.opts.SemanticWeight)

	v, _ = v.Update(msg)
	require.Len(t, v.Results(), 2)
	assert.NoError(t, v.Err())
	assert.Contains(t, v.View(), "Results (2)")
	assert.Contains(t, v.View(), "2 results")
}

func TestView_ModeCycles(t *testing.T) {
	retrieval := &mockRetrieval{}
	v := newView(retrieval, &mockDocuments{})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.SearchMethodSemantic, v.Mode())
	assert.Contains(t, v.View(), "[semantic]")

	submit(t, v, "q")
	assert.Equal(t, domain.SearchMethodSemantic, retrieval.method)
	assert.Equal(t, 4, retrieval.opts.Limit)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.SearchMethodKeyword, v.Mode())
	v, _ = v.Update(keyRunes("n"))
	submit(t, v, "q")
	assert.Equal(t, domain.SearchMethodKeyword, retrieval.method)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.SearchMethodHybrid, v.Mode())
}

func TestView_EmptyQueryDoesNothing(t *testing.T) {
	v := newView(&mockRetrieval{}, &mockDocuments{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, v.InputFocused())
}

func TestView_SearchError(t *testing.T) {
	v := newView(&mockRetrieval{err: domain.ErrRetrievalFailure}, &mockDocuments{})

	v, _ = v.Update(submit(t, v, "q"))
	assert.ErrorIs(t, v.Err(), domain.ErrRetrievalFailure)
	assert.Contains(t, v.View(), "Error:")
}

func TestView_NoRetrievalService(t *testing.T) {
	v := NewView(nil, nil, nil, nil, domain.HybridOptions{})
	v.SetDimensions(80, 24)

	msg := submit(t, v, "q")
	errMsg, ok := msg.(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, ErrNoRetrievalService)
}

func TestView_ResultActions(t *testing.T) {
	docs := &mockDocuments{doc: &domain.Document{ID: "doc_2", Content: "body"}}
	v := newView(&mockRetrieval{results: testResults()}, docs)
	v, _ = v.Update(submit(t, v, "q"))

	v, _ = v.Update(keyRunes("j"))
	assert.Equal(t, 1, v.SelectedIndex())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	selected, ok := cmd().(messages.DocumentSelected)
	require.True(t, ok)
	assert.Equal(t, "doc_2", selected.Document.ID)
	assert.Equal(t, messages.ViewSearch, selected.Back)

	_, cmd = v.Update(keyRunes("d"))
	details, ok := cmd().(messages.DocumentDetailsLoaded)
	require.True(t, ok)
	assert.Equal(t, "doc_2", details.Details.ID)

	_, cmd = v.Update(keyRunes("o"))
	status, ok := cmd().(messages.StatusMessage)
	require.True(t, ok)
	assert.Equal(t, "doc_2", docs.opened)

	v, _ = v.Update(status)
	assert.Contains(t, v.View(), "Opening document...")
}

func TestView_NewQueryAndBack(t *testing.T) {
	v := newView(&mockRetrieval{results: testResults()}, &mockDocuments{})
	v, _ = v.Update(submit(t, v, "q"))

	v, _ = v.Update(keyRunes("n"))
	assert.True(t, v.InputFocused())
	assert.Equal(t, "", v.Query())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Reset(t *testing.T) {
	v := newView(&mockRetrieval{results: testResults()}, &mockDocuments{})
	v, _ = v.Update(submit(t, v, "q"))
	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	v.Reset()
	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Results())
	assert.NoError(t, v.Err())
}
