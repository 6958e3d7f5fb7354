package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

type mockRetrievalService struct {
	results []domain.ScoredDocument
	err     error
	method  domain.SearchMethod
	query   string
	limit   int
	opts    domain.HybridOptions
}

func (m *mockRetrievalService) SemanticSearch(_ context.Context, q string, limit int) ([]domain.ScoredDocument, error) {
	m.method, m.query, m.limit = domain.SearchMethodSemantic, q, limit
	return m.results, m.err
}

func (m *mockRetrievalService) KeywordSearch(_ context.Context, q string, limit int) ([]domain.ScoredDocument, error) {
	m.method, m.query, m.limit = domain.SearchMethodKeyword, q, limit
	return m.results, m.err
}

func (m *mockRetrievalService) HybridSearch(
	_ context.Context, q string, opts domain.HybridOptions,
) ([]domain.ScoredDocument, error) {
	m.method, m.query, m.opts = domain.SearchMethodHybrid, q, opts
	return m.results, m.err
}

type mockQueryService struct {
	resp *domain.QueryResponse
	err  error
	text string
}

func (m *mockQueryService) Query(_ context.Context, text string) (*domain.QueryResponse, error) {
	m.text = text
	return m.resp, m.err
}

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

type mockIngestionService struct {
	removed string
}

func (m *mockIngestionService) Submit(
	_ context.Context, path, _ string, _ domain.IngestMetadata,
) (domain.IndexOutcome, error) {
	return domain.IndexOutcome{Path: path, DocumentID: domain.DocumentID(path)}, nil
}

func (m *mockIngestionService) Remove(_ context.Context, path string) error {
	m.removed = path
	return nil
}

type mockDocumentService struct {
	docs   []domain.Document
	stats  *domain.StoreStats
	tag    string
	opened string
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockDocumentService) ListByTag(_ context.Context, tag string) ([]domain.Document, error) {
	m.tag = tag
	var out []domain.Document
	for _, d := range m.docs {
		for _, t := range d.Tags {
			if t == tag {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (m *mockDocumentService) Stats(_ context.Context) (*domain.StoreStats, error) {
	return m.stats, nil
}

func (m *mockDocumentService) Details(ctx context.Context, id string) (*driving.DocumentDetails, error) {
	doc, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &driving.DocumentDetails{Document: *doc, ChunkCount: 2, EmbeddingProvider: "stub", Dimensions: 384}, nil
}

func (m *mockDocumentService) Open(_ context.Context, id string) error {
	m.opened = id
	return nil
}

type mockMemoryService struct {
	suggestions []domain.Suggestion
	topics      []domain.TopicLocation
	pruned      int
	minOcc      int
}

func (m *mockMemoryService) Suggest(_ context.Context, _ string, _ int) ([]domain.Suggestion, error) {
	return m.suggestions, nil
}

func (m *mockMemoryService) TopicLocations(_ context.Context, minOccurrences int) ([]domain.TopicLocation, error) {
	m.minOcc = minOccurrences
	return m.topics, nil
}

func (m *mockMemoryService) Prune(_ context.Context) (int, error) {
	return m.pruned, nil
}

type mockWorkspaceService struct {
	op     domain.Operation
	result *domain.OperationResult
	err    error
}

func (m *mockWorkspaceService) Execute(_ context.Context, op domain.Operation) (*domain.OperationResult, error) {
	m.op = op
	return m.result, m.err
}

type mockSettingsService struct {
	settings domain.Settings
	set      map[string]string
	invalid  error
}

func (m *mockSettingsService) Get() (domain.Settings, error) { return m.settings, nil }

func (m *mockSettingsService) Set(key, value string) error {
	if m.invalid != nil {
		return m.invalid
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"retrieval.max_results", "retrieval.context_format"}
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, _ string) error {
	m.settings.Embedding.Provider = p
	m.settings.Embedding.Model = model
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, _ string) error {
	m.settings.LLM.Provider = p
	m.settings.LLM.Model = model
	return nil
}

func (m *mockSettingsService) Validate() error { return m.invalid }

type mockReembedder struct {
	report domain.ReembedReport
}

func (m *mockReembedder) Run(_ context.Context) (domain.ReembedReport, error) {
	return m.report, nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	retrieval *mockRetrievalService
	query     *mockQueryService
	sync      *mockSyncService
	ingestion *mockIngestionService
	documents *mockDocumentService
	memory    *mockMemoryService
	workspace *mockWorkspaceService
	settings  *mockSettingsService
	reembed   *mockReembedder
}

func testDocuments() []domain.Document {
	indexed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Document{
		{
			ID: "doc_k8s", Title: "Kubernetes", SourcePath: "/notes/ops/k8s.md", FileType: "md",
			Content: "Pods run containers.", Tags: []string{"ops"}, IndexedAt: indexed, AccessCount: 3,
		},
		{ID: "doc_cats", Title: "Cats", SourcePath: "/notes/cats.md", FileType: "md", Content: "Cats sleep."},
	}
}

// setupTestServices installs mock services and returns them with a cleanup
// function that removes them again.
func setupTestServices() (*testServices, func()) {
	docs := testDocuments()
	ts := &testServices{
		retrieval: &mockRetrievalService{results: []domain.ScoredDocument{
			{Document: docs[0], Score: 0.82, SemanticScore: 0.9, KeywordScore: 0.6, Highlights: []string{"Pods run containers."}},
		}},
		query: &mockQueryService{resp: &domain.QueryResponse{
			AnswerText:     "Pods run containers.",
			ContextUsed:    true,
			RetrievedCount: 1,
			SearchTimeMs:   4,
			Method:         domain.SearchMethodHybrid,
			Sources:        []string{"/notes/ops/k8s.md"},
			States: []domain.QueryState{
				domain.StateStart, domain.StateExtractQuery, domain.StateRetrieve, domain.StateValidate,
				domain.StateInjectContext, domain.StateGenerate, domain.StateDone,
			},
		}},
		sync: &mockSyncService{report: &domain.BatchReport{
			Outcomes: []domain.IndexOutcome{{Path: "/notes/a.md", DocumentID: "doc_a", Chunks: 1}},
			Indexed:  1,
		}},
		ingestion: &mockIngestionService{},
		documents: &mockDocumentService{docs: docs, stats: &domain.StoreStats{
			Documents: 2, Chunks: 3, Embeddings: 2, Tags: 1,
			EmbeddingsByProvider: map[string]int{"stub": 1, "ollama": 1},
		}},
		memory:    &mockMemoryService{},
		workspace: &mockWorkspaceService{},
		settings:  &mockSettingsService{settings: domain.DefaultSettings(), set: map[string]string{}},
		reembed:   &mockReembedder{},
	}

	SetServices(&Services{
		Query:      ts.query,
		Retrieval:  ts.retrieval,
		Sync:       ts.sync,
		Ingestion:  ts.ingestion,
		Document:   ts.documents,
		Memory:     ts.memory,
		Workspace:  ts.workspace,
		Settings:   ts.settings,
		Reembedder: ts.reembed,
	})
	return ts, func() { SetServices(nil) }
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

// executeWithInput is execute with stdin reading from input.
func executeWithInput(input string, args ...string) (string, error) {
	defer resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of c and its subcommands to its default.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
