package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/scoring"
)

// Ensure RetrievalEngine implements the interface.
var _ driving.RetrievalService = (*RetrievalEngine)(nil)

// RetrievalEngine indexes documents and answers semantic, keyword and hybrid
// searches against a DocumentStore.
type RetrievalEngine struct {
	store   driven.DocumentStore
	chunker driven.Chunker

	mu        sync.RWMutex
	provider  driven.EmbeddingProvider
	listeners []func(domain.ProviderChanged)

	now func() time.Time
}

// NewRetrievalEngine creates a retrieval engine.
// The chunker is optional; without it documents are never chunked.
func NewRetrievalEngine(
	store driven.DocumentStore,
	provider driven.EmbeddingProvider,
	chunker driven.Chunker,
) *RetrievalEngine {
	return &RetrievalEngine{
		store:    store,
		provider: provider,
		chunker:  chunker,
		now:      time.Now,
	}
}

// Provider returns the active embedding provider.
func (e *RetrievalEngine) Provider() driven.EmbeddingProvider {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.provider
}

// OnProviderChanged registers fn to receive ProviderChanged events.
// Listeners are called synchronously from SetProvider.
func (e *RetrievalEngine) OnProviderChanged(fn func(domain.ProviderChanged)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// SetProvider switches the active embedding provider. When the provider name
// changes a ProviderChanged event is emitted and returned; stored embeddings
// from the old provider stop matching queries until they are re-embedded.
func (e *RetrievalEngine) SetProvider(p driven.EmbeddingProvider) (domain.ProviderChanged, bool) {
	e.mu.Lock()
	from := ""
	if e.provider != nil {
		from = e.provider.Name()
	}
	e.provider = p
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()

	if from == p.Name() {
		return domain.ProviderChanged{}, false
	}
	return e.emit(listeners, from, p.Name()), true
}

// ReconcileProvider compares the active provider with the providers that
// produced the stored embeddings. When other providers are found, a
// ProviderChanged event from the most common of them is emitted.
func (e *RetrievalEngine) ReconcileProvider(ctx context.Context) (domain.ProviderChanged, bool, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return domain.ProviderChanged{}, false, fmt.Errorf("read index stats: %w", err)
	}

	e.mu.RLock()
	active := e.provider.Name()
	listeners := slices.Clone(e.listeners)
	e.mu.RUnlock()

	from, most := "", 0
	for name, n := range stats.EmbeddingsByProvider {
		if name == active || n == 0 {
			continue
		}
		if n > most || (n == most && name < from) {
			from, most = name, n
		}
	}
	if most == 0 {
		return domain.ProviderChanged{}, false, nil
	}
	logger.Debug("%d documents embedded by %s, active provider is %s", most, from, active)
	return e.emit(listeners, from, active), true, nil
}

func (e *RetrievalEngine) emit(listeners []func(domain.ProviderChanged), from, to string) domain.ProviderChanged {
	evt := domain.ProviderChanged{From: from, To: to, At: e.now()}
	logger.Info("embedding provider changed: %q -> %q", evt.From, evt.To)
	for _, fn := range listeners {
		fn(evt)
	}
	return evt
}

// IndexDocument embeds and stores doc. It is a no-op when the stored
// checksum matches and the stored embedding came from the active provider.
// When replaceTags is false, existing tags are kept.
func (e *RetrievalEngine) IndexDocument(ctx context.Context, doc domain.Document, replaceTags bool) (domain.IndexOutcome, error) {
	if strings.TrimSpace(doc.SourcePath) == "" {
		return domain.IndexOutcome{}, fmt.Errorf("%w: source path is required", domain.ErrInvalidInput)
	}
	doc.ID = domain.DocumentID(doc.SourcePath)
	doc.Checksum = domain.Checksum(doc.Content)
	doc.Tags = domain.NormaliseTags(doc.Tags)
	outcome := domain.IndexOutcome{Path: doc.SourcePath, DocumentID: doc.ID}

	provider := e.Provider()
	unchanged, err := e.unchanged(ctx, doc, provider.Name(), replaceTags)
	if err != nil {
		return outcome, err
	}
	if unchanged {
		logger.Debug("index %s: unchanged, skipping", doc.SourcePath)
		outcome.Skipped = true
		return outcome, nil
	}

	emb, chunks, err := e.embed(ctx, provider, doc)
	if err != nil {
		return outcome, err
	}

	err = e.store.Upsert(ctx, driven.UpsertInput{
		Document:    doc,
		Embedding:   emb,
		Chunks:      chunks,
		ReplaceTags: replaceTags,
	})
	if err != nil {
		return outcome, fmt.Errorf("store %s: %w", doc.SourcePath, err)
	}

	outcome.Chunks = len(chunks)
	logger.Debug("indexed %s (%d chunks, provider %s)", doc.SourcePath, len(chunks), provider.Name())
	return outcome, nil
}

// unchanged reports whether the stored copy of doc is current.
func (e *RetrievalEngine) unchanged(ctx context.Context, doc domain.Document, providerName string, replaceTags bool) (bool, error) {
	stored, err := e.store.Get(ctx, doc.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", doc.SourcePath, err)
	}
	if stored.Checksum != doc.Checksum {
		return false, nil
	}
	if replaceTags && !slices.Equal(sortedCopy(stored.Tags), sortedCopy(doc.Tags)) {
		return false, nil
	}

	emb, err := e.store.GetEmbedding(ctx, doc.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup embedding %s: %w", doc.SourcePath, err)
	}
	return emb.ProviderName == providerName, nil
}

// ReembedDocument regenerates the embeddings of a stored document with the
// active provider, regardless of its checksum.
func (e *RetrievalEngine) ReembedDocument(ctx context.Context, id string) error {
	doc, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	emb, chunks, err := e.embed(ctx, e.Provider(), *doc)
	if err != nil {
		return err
	}
	return e.store.Upsert(ctx, driven.UpsertInput{
		Document:  *doc,
		Embedding: emb,
		Chunks:    chunks,
	})
}

// embed produces the document embedding and its chunks. Chunked documents
// are embedded per chunk and the document vector is the normalised mean.
func (e *RetrievalEngine) embed(ctx context.Context, provider driven.EmbeddingProvider, doc domain.Document) (*domain.Embedding, []domain.Chunk, error) {
	var chunks []domain.Chunk
	if e.chunker != nil {
		chunks = e.chunker.Split(doc.ID, doc.Content)
	}

	if len(chunks) == 0 {
		vec, err := provider.Embed(ctx, doc.Content)
		if err != nil {
			return nil, nil, err
		}
		return &domain.Embedding{DocumentID: doc.ID, Vector: vec, ProviderName: provider.Name()}, nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, nil, domain.NewEmbeddingError(provider.Name(),
			fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks)))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	return &domain.Embedding{
		DocumentID:   doc.ID,
		Vector:       scoring.Mean(vectors),
		ProviderName: provider.Name(),
	}, chunks, nil
}

// SemanticSearch ranks documents by cosine similarity to the query embedding.
// Only embeddings produced by the active provider are compared.
func (e *RetrievalEngine) SemanticSearch(ctx context.Context, query string, limit int) ([]domain.ScoredDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.ScoredDocument{}, nil
	}

	provider := e.Provider()
	vec, err := provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := e.store.Search(ctx, vec, provider.Name(), limit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	for i := range results {
		results[i].SemanticScore = results[i].Score
	}
	logger.Debug("semantic search %q: %d results", query, len(results))
	return results, nil
}

// KeywordSearch ranks documents by normalised keyword frequency.
func (e *RetrievalEngine) KeywordSearch(ctx context.Context, query string, limit int) ([]domain.ScoredDocument, error) {
	keywords := scoring.ExtractKeywords(query)
	if len(keywords) == 0 {
		return []domain.ScoredDocument{}, nil
	}

	results, err := e.store.KeywordSearch(ctx, keywords, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	for i := range results {
		results[i].KeywordScore = results[i].Score
	}
	logger.Debug("keyword search %v: %d results", keywords, len(results))
	return results, nil
}

// HybridSearch runs semantic and keyword search independently with twice the
// limit and merges them by document. Each method's raw score is scaled by its
// weight; a document found by one method only keeps that single weighted
// contribution. A method with zero weight is not run.
func (e *RetrievalEngine) HybridSearch(ctx context.Context, query string, opts domain.HybridOptions) ([]domain.ScoredDocument, error) {
	if opts.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}
	inner := opts.Limit * 2

	var semantic, keyword []domain.ScoredDocument
	if opts.SemanticWeight > 0 {
		var err error
		if semantic, err = e.SemanticSearch(ctx, query, inner); err != nil {
			return nil, err
		}
	}
	if opts.KeywordWeight > 0 {
		var err error
		if keyword, err = e.KeywordSearch(ctx, query, inner); err != nil {
			return nil, err
		}
	}

	merged := MergeHybrid(semantic, keyword, opts.SemanticWeight, opts.KeywordWeight)

	if opts.Threshold > 0 {
		kept := merged[:0]
		for _, r := range merged {
			if r.Score >= opts.Threshold {
				kept = append(kept, r)
			}
		}
		merged = kept
	}
	if len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}

	logger.Debug("hybrid search %q: %d semantic + %d keyword -> %d", query, len(semantic), len(keyword), len(merged))
	return merged, nil
}

// MergeHybrid merges semantic and keyword results by document ID and sorts
// them by descending weighted score. Equal scores keep scan order: semantic
// results first, then keyword-only results.
func MergeHybrid(semantic, keyword []domain.ScoredDocument, semanticWeight, keywordWeight float64) []domain.ScoredDocument {
	merged := make([]domain.ScoredDocument, 0, len(semantic)+len(keyword))
	index := make(map[string]int, len(semantic)+len(keyword))

	for _, r := range semantic {
		r.SemanticScore = r.Score
		r.Score = semanticWeight * r.Score
		index[r.Document.ID] = len(merged)
		merged = append(merged, r)
	}
	for _, r := range keyword {
		if i, ok := index[r.Document.ID]; ok {
			merged[i].KeywordScore = r.Score
			merged[i].Score += keywordWeight * r.Score
			merged[i].Highlights = mergeHighlights(merged[i].Highlights, r.Highlights)
			continue
		}
		r.KeywordScore = r.Score
		r.Score = keywordWeight * r.Score
		index[r.Document.ID] = len(merged)
		merged = append(merged, r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

func mergeHighlights(a, b []string) []string {
	out := slices.Clone(a)
	for _, h := range b {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}

func sortedCopy(s []string) []string {
	c := slices.Clone(s)
	sort.Strings(c)
	return c
}
