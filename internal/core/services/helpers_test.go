package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driven/embedding/stub"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall/internal/connectors/filesystem"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// newTestEngine returns an engine over an in-memory store with a 64-dim
// stub provider and no chunker.
func newTestEngine(t *testing.T) (*RetrievalEngine, *memory.DocumentStore) {
	t.Helper()
	store := memory.NewDocumentStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewRetrievalEngine(store, stub.New(64), nil), store
}

func indexDoc(t *testing.T, engine *RetrievalEngine, path, content string, tags ...string) domain.IndexOutcome {
	t.Helper()
	outcome, err := engine.IndexDocument(context.Background(), domain.Document{
		SourcePath: path,
		Content:    content,
		Tags:       tags,
	}, tags != nil)
	require.NoError(t, err)
	return outcome
}

func paths(results []domain.ScoredDocument) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Document.SourcePath
	}
	return out
}

// countingProvider wraps a provider, counting calls and failing on demand.
type countingProvider struct {
	driven.EmbeddingProvider

	mu      sync.Mutex
	embeds  int
	batches int
	failOn  string
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.embeds++
	fail := p.failOn != "" && strings.Contains(text, p.failOn)
	p.mu.Unlock()
	if fail {
		return nil, domain.NewEmbeddingError(p.Name(), errors.New("model rejected input"))
	}
	return p.EmbeddingProvider.Embed(ctx, text)
}

func (p *countingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	p.batches++
	p.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (p *countingProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.embeds
}

// fakeRetriever is a scripted RetrievalService.
type fakeRetriever struct {
	mu           sync.Mutex
	hybrid       func(ctx context.Context, query string, opts domain.HybridOptions) ([]domain.ScoredDocument, error)
	keyword      func(ctx context.Context, query string, limit int) ([]domain.ScoredDocument, error)
	hybridCalls  int
	keywordCalls int
}

func (f *fakeRetriever) SemanticSearch(context.Context, string, int) ([]domain.ScoredDocument, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeRetriever) KeywordSearch(ctx context.Context, query string, limit int) ([]domain.ScoredDocument, error) {
	f.mu.Lock()
	f.keywordCalls++
	f.mu.Unlock()
	if f.keyword == nil {
		return []domain.ScoredDocument{}, nil
	}
	return f.keyword(ctx, query, limit)
}

func (f *fakeRetriever) HybridSearch(ctx context.Context, query string, opts domain.HybridOptions) ([]domain.ScoredDocument, error) {
	f.mu.Lock()
	f.hybridCalls++
	f.mu.Unlock()
	if f.hybrid == nil {
		return []domain.ScoredDocument{}, nil
	}
	return f.hybrid(ctx, query, opts)
}

// fakeGenerator records the prompts and contexts it receives.
type fakeGenerator struct {
	mu       sync.Mutex
	prompts  []string
	contexts []string
	answer   string
	err      error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt, retrieved string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.contexts = append(g.contexts, retrieved)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *fakeGenerator) ModelName() string          { return "fake" }
func (g *fakeGenerator) Ping(context.Context) error { return nil }
func (g *fakeGenerator) Close() error               { return nil }

func scored(path, content string, score float64) domain.ScoredDocument {
	return domain.ScoredDocument{
		Document: domain.Document{
			ID:         domain.DocumentID(path),
			SourcePath: path,
			Content:    content,
		},
		Score: score,
	}
}

// workspace is a filesystem-backed set of services over a temp directory.
type workspace struct {
	root    string
	source  *filesystem.Source
	engine  *RetrievalEngine
	store   *memory.DocumentStore
	indexer *Indexer
	syncer  *SyncService
	ops     *WorkspaceService
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	engine, store := newTestEngine(t)
	w := &workspace{
		root:   t.TempDir(),
		engine: engine,
		store:  store,
	}
	w.source = filesystem.New(w.root)
	w.indexer = NewIndexer(engine, store, 2)
	w.syncer = NewSyncService(w.source, store, w.indexer)
	w.ops = NewWorkspaceService(w.source, w.indexer, engine, w.syncer, domain.DefaultRetrievalSettings())
	return w
}

// path returns the absolute path of rel under the workspace root.
func (w *workspace) path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func (w *workspace) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := w.path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (w *workspace) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(w.path(rel))
	require.NoError(t, err)
	return string(data)
}
