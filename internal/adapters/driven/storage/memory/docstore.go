package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/recall/internal/adapters/driven/storage"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/scoring"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Each Upsert replaces the document, its embedding, chunks and tags under
// one lock, so readers never observe a partial write.
type DocumentStore struct {
	mu         sync.RWMutex
	closed     bool
	documents  map[string]domain.Document
	embeddings map[string]storedEmbedding
	chunks     map[string][]domain.Chunk
	now        func() time.Time
}

type storedEmbedding struct {
	embedding domain.Embedding
	checksum  string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents:  make(map[string]domain.Document),
		embeddings: make(map[string]storedEmbedding),
		chunks:     make(map[string][]domain.Chunk),
		now:        time.Now,
	}
}

// Close marks the store closed. Later calls return domain.ErrNotInitialized.
func (s *DocumentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Upsert inserts or replaces a document and its embedding.
func (s *DocumentStore) Upsert(_ context.Context, in driven.UpsertInput) error {
	doc := in.Document
	if doc.SourcePath == "" {
		return fmt.Errorf("%w: document source path is required", domain.ErrInvalidInput)
	}
	if doc.ID == "" {
		doc.ID = domain.DocumentID(doc.SourcePath)
	}
	if in.Embedding != nil && (in.Embedding.ProviderName == "" || len(in.Embedding.Vector) == 0) {
		return fmt.Errorf("%w: embedding requires a provider and a vector", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrNotInitialized
	}

	now := s.now()
	doc.Checksum = domain.Checksum(doc.Content)
	doc.IndexedAt = now
	if doc.ModifiedAt.IsZero() {
		doc.ModifiedAt = now
	}

	prev, exists := s.documents[doc.ID]
	if exists {
		doc.CreatedAt = prev.CreatedAt
		doc.AccessCount = prev.AccessCount
		doc.LastAccessed = prev.LastAccessed
		if !in.ReplaceTags {
			doc.Tags = prev.Tags
		}
	} else {
		doc.CreatedAt = now
		doc.AccessCount = 0
		doc.LastAccessed = time.Time{}
		if !in.ReplaceTags {
			doc.Tags = nil
		}
	}
	if in.ReplaceTags {
		doc.Tags = sortedTags(doc.Tags)
	}
	s.documents[doc.ID] = doc

	if in.Embedding != nil {
		emb := *in.Embedding
		emb.DocumentID = doc.ID
		emb.Vector = append([]float32(nil), emb.Vector...)
		s.embeddings[doc.ID] = storedEmbedding{embedding: emb, checksum: doc.Checksum}
	} else {
		delete(s.embeddings, doc.ID)
	}

	if len(in.Chunks) > 0 {
		chunks := append([]domain.Chunk(nil), in.Chunks...)
		sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
		s.chunks[doc.ID] = chunks
	} else {
		delete(s.chunks, doc.ID)
	}
	return nil
}

// GetReindexCandidates compares on-disk checksums with stored checksums.
func (s *DocumentStore) GetReindexCandidates(ctx context.Context, paths []string) ([]domain.ReindexCandidate, error) {
	return storage.ReindexCandidates(ctx, paths, func(_ context.Context, id string) (string, bool, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.closed {
			return "", false, domain.ErrNotInitialized
		}
		doc, ok := s.documents[id]
		return doc.Checksum, ok, nil
	})
}

// Search ranks documents embedded by providerName by cosine similarity.
func (s *DocumentStore) Search(
	_ context.Context, query []float32, providerName string, limit int,
) ([]domain.ScoredDocument, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrNotInitialized
	}

	var results []domain.ScoredDocument
	for _, doc := range s.scanOrder() {
		stored, ok := s.embeddings[doc.ID]
		if !ok || stored.embedding.ProviderName != providerName || stored.checksum != doc.Checksum {
			continue
		}
		score, err := scoring.Cosine(query, stored.embedding.Vector)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", doc.SourcePath, err)
		}

		result := domain.ScoredDocument{Document: doc, Score: score, SemanticScore: score}
		for _, chunk := range s.chunks[doc.ID] {
			if len(chunk.Embedding) == 0 {
				continue
			}
			cs, err := scoring.Cosine(query, chunk.Embedding)
			if err != nil {
				return nil, fmt.Errorf("scoring chunk of %s: %w", doc.SourcePath, err)
			}
			if cs <= result.Score {
				continue
			}
			result.Score = cs
			result.SemanticScore = cs
			result.Highlights = []string{scoring.Truncate(chunk.Content, scoring.HighlightLength)}
		}
		results = append(results, result)
	}
	return storage.Rank(results, limit), nil
}

// KeywordSearch ranks documents by normalised keyword frequency.
func (s *DocumentStore) KeywordSearch(_ context.Context, keywords []string, limit int) ([]domain.ScoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrNotInitialized
	}
	if len(keywords) == 0 {
		return nil, nil
	}

	var results []domain.ScoredDocument
	for _, doc := range s.scanOrder() {
		score := scoring.KeywordScore(doc.Content, keywords)
		if score <= 0 {
			continue
		}
		results = append(results, domain.ScoredDocument{
			Document:     doc,
			Score:        score,
			KeywordScore: score,
			Highlights:   scoring.Highlights(doc.Content, keywords, 3),
		})
	}
	return storage.Rank(results, limit), nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrNotInitialized
	}
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetEmbedding retrieves the stored embedding of a document.
func (s *DocumentStore) GetEmbedding(_ context.Context, documentID string) (*domain.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrNotInitialized
	}
	stored, ok := s.embeddings[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	emb := stored.embedding
	return &emb, nil
}

// GetChunks retrieves all chunks for a document.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrNotInitialized
	}
	return append([]domain.Chunk(nil), s.chunks[documentID]...), nil
}

// List returns all documents ordered by source path.
func (s *DocumentStore) List(_ context.Context) ([]domain.Document, error) {
	return s.filter(func(domain.Document) bool { return true })
}

// ListByTag returns documents carrying tag.
func (s *DocumentStore) ListByTag(_ context.Context, tag string) ([]domain.Document, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return s.filter(func(doc domain.Document) bool {
		for _, t := range doc.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

func (s *DocumentStore) filter(keep func(domain.Document) bool) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrNotInitialized
	}

	var docs []domain.Document
	for _, doc := range s.scanOrder() {
		if keep(doc) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// scanOrder returns every document ordered by source path, matching the
// row order of the SQLite store. The caller holds the lock.
func (s *DocumentStore) scanOrder() []domain.Document {
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].SourcePath < docs[j].SourcePath })
	return docs
}

// ListStale returns IDs of documents lacking a current embedding from providerName.
func (s *DocumentStore) ListStale(_ context.Context, providerName string) ([]string, error) {
	docs, err := s.filter(func(doc domain.Document) bool {
		stored, ok := s.embeddings[doc.ID]
		return !ok || stored.embedding.ProviderName != providerName || stored.checksum != doc.Checksum
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids, nil
}

// RecordAccess increments access counters of the given documents.
func (s *DocumentStore) RecordAccess(_ context.Context, ids []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrNotInitialized
	}
	for _, id := range ids {
		doc, ok := s.documents[id]
		if !ok {
			continue
		}
		doc.AccessCount++
		doc.LastAccessed = at
		s.documents[id] = doc
	}
	return nil
}

// Remove deletes a document with its embedding and chunks.
func (s *DocumentStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrNotInitialized
	}
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.embeddings, id)
	delete(s.chunks, id)
	return nil
}

// Stats summarises the store contents. SearchPatterns is always zero here;
// patterns live in PatternStore.
func (s *DocumentStore) Stats(_ context.Context) (*domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrNotInitialized
	}

	stats := &domain.StoreStats{
		Documents:            len(s.documents),
		Embeddings:           len(s.embeddings),
		EmbeddingsByProvider: make(map[string]int),
	}
	tags := make(map[string]bool)
	for id, doc := range s.documents {
		stats.Chunks += len(s.chunks[id])
		for _, t := range doc.Tags {
			tags[t] = true
		}
	}
	stats.Tags = len(tags)
	for _, stored := range s.embeddings {
		stats.EmbeddingsByProvider[stored.embedding.ProviderName]++
	}
	return stats, nil
}

func sortedTags(tags []string) []string {
	tags = domain.NormaliseTags(tags)
	sort.Strings(tags)
	if len(tags) == 0 {
		return nil
	}
	return tags
}
