package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure PatternStore implements the interface.
var _ driven.PatternStore = (*PatternStore)(nil)

// PatternStore is an in-memory implementation of driven.PatternStore.
type PatternStore struct {
	mu       sync.RWMutex
	patterns map[string]*domain.SearchPattern
}

// NewPatternStore creates a new in-memory pattern store.
func NewPatternStore() *PatternStore {
	return &PatternStore{
		patterns: make(map[string]*domain.SearchPattern),
	}
}

// RecordPattern adds one occurrence of (query, files).
func (s *PatternStore) RecordPattern(_ context.Context, query string, files []string, success bool, at time.Time) error {
	query = strings.Join(strings.Fields(strings.ToLower(query)), " ")
	if query == "" {
		return fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	sorted := append(make([]string, 0, len(files)), files...)
	sort.Strings(sorted)
	key := query + "\x00" + strings.Join(sorted, "\n")

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patterns[key]
	if !ok {
		p = &domain.SearchPattern{
			ID:          uuid.New().String(),
			Query:       query,
			ResultFiles: sorted,
			CreatedAt:   at,
		}
		s.patterns[key] = p
	}
	p.TotalCount++
	if success {
		p.SuccessCount++
	}
	p.LastUsed = at
	return nil
}

// ListPatterns returns all patterns, most recently used first.
func (s *PatternStore) ListPatterns(_ context.Context) ([]domain.SearchPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patterns := make([]domain.SearchPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		cp := *p
		cp.ResultFiles = append([]string(nil), p.ResultFiles...)
		patterns = append(patterns, cp)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if !patterns[i].LastUsed.Equal(patterns[j].LastUsed) {
			return patterns[i].LastUsed.After(patterns[j].LastUsed)
		}
		return patterns[i].Query < patterns[j].Query
	})
	return patterns, nil
}

// PrunePatterns deletes patterns unused since cutoff with a success rate below minRate.
func (s *PatternStore) PrunePatterns(_ context.Context, cutoff time.Time, minRate float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, p := range s.patterns {
		if p.LastUsed.Before(cutoff) && p.SuccessRate() < minRate {
			delete(s.patterns, key)
			n++
		}
	}
	return n, nil
}
