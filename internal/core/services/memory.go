package services

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/scoring"
)

// Ensure SearchMemory implements the interface.
var _ driving.SearchMemoryService = (*SearchMemory)(nil)

// Default pruning policy.
const (
	DefaultPatternMaxAge     = 90 * 24 * time.Hour
	DefaultPatternMinSuccess = 0.2
	defaultSuggestionLimit   = 5
)

// MemoryConfig configures search memory pruning.
type MemoryConfig struct {
	// MaxAge is how long an unused pattern is kept. Zero uses DefaultPatternMaxAge.
	MaxAge time.Duration

	// MinSuccessRate keeps old patterns whose success rate reaches it.
	// Zero uses DefaultPatternMinSuccess.
	MinSuccessRate float64
}

// SearchMemory records query outcomes and derives suggestions and recurring
// topic locations from them.
type SearchMemory struct {
	store  driven.PatternStore
	config MemoryConfig
	now    func() time.Time
}

// NewSearchMemory creates a search memory backed by store.
func NewSearchMemory(store driven.PatternStore, config MemoryConfig) *SearchMemory {
	if config.MaxAge <= 0 {
		config.MaxAge = DefaultPatternMaxAge
	}
	if config.MinSuccessRate <= 0 {
		config.MinSuccessRate = DefaultPatternMinSuccess
	}
	return &SearchMemory{
		store:  store,
		config: config,
		now:    time.Now,
	}
}

// Record adds one occurrence of query with its result files.
func (m *SearchMemory) Record(ctx context.Context, query string, files []string, success bool) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if err := m.store.RecordPattern(ctx, query, files, success, m.now()); err != nil {
		return fmt.Errorf("record pattern: %w", err)
	}
	return nil
}

// Suggest returns past queries sharing at least one keyword with query,
// ordered by success rate and then recency. An empty query returns the most
// recent successful queries.
func (m *SearchMemory) Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	patterns, err := m.store.ListPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}

	keywords := scoring.ExtractKeywords(query)

	// One suggestion per query text: the best of its result sets.
	best := make(map[string]domain.Suggestion)
	var order []string
	for _, p := range patterns {
		if len(keywords) > 0 && !sharesKeyword(p.Query, keywords) {
			continue
		}
		if len(keywords) == 0 && p.SuccessCount == 0 {
			continue
		}
		s := domain.Suggestion{
			Query:       p.Query,
			ResultFiles: p.ResultFiles,
			SuccessRate: p.SuccessRate(),
			LastUsed:    p.LastUsed,
		}
		cur, seen := best[p.Query]
		if !seen {
			order = append(order, p.Query)
		}
		if !seen || betterSuggestion(s, cur) {
			best[p.Query] = s
		}
	}

	suggestions := make([]domain.Suggestion, 0, len(order))
	for _, q := range order {
		suggestions = append(suggestions, best[q])
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return betterSuggestion(suggestions[i], suggestions[j])
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func betterSuggestion(a, b domain.Suggestion) bool {
	if a.SuccessRate != b.SuccessRate {
		return a.SuccessRate > b.SuccessRate
	}
	return a.LastUsed.After(b.LastUsed)
}

func sharesKeyword(query string, keywords []string) bool {
	for _, tok := range scoring.ExtractKeywords(query) {
		if slices.Contains(keywords, tok) {
			return true
		}
	}
	return false
}

// TopicLocations maps query keywords that occurred in successful searches at
// least minOccurrences times to the directories of their result files.
// Topics are ordered by occurrences, then alphabetically.
func (m *SearchMemory) TopicLocations(ctx context.Context, minOccurrences int) ([]domain.TopicLocation, error) {
	if minOccurrences <= 0 {
		minOccurrences = 1
	}
	patterns, err := m.store.ListPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}

	counts := make(map[string]int)
	locations := make(map[string]map[string]bool)
	for _, p := range patterns {
		if p.SuccessCount == 0 {
			continue
		}
		for _, topic := range scoring.ExtractKeywords(p.Query) {
			counts[topic] += p.SuccessCount
			if locations[topic] == nil {
				locations[topic] = make(map[string]bool)
			}
			for _, f := range p.ResultFiles {
				locations[topic][locationOf(f)] = true
			}
		}
	}

	var topics []domain.TopicLocation
	for topic, n := range counts {
		if n < minOccurrences {
			continue
		}
		locs := make([]string, 0, len(locations[topic]))
		for l := range locations[topic] {
			locs = append(locs, l)
		}
		sort.Strings(locs)
		topics = append(topics, domain.TopicLocation{Topic: topic, Locations: locs, Occurrences: n})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Occurrences != topics[j].Occurrences {
			return topics[i].Occurrences > topics[j].Occurrences
		}
		return topics[i].Topic < topics[j].Topic
	})
	return topics, nil
}

// locationOf returns the directory of file; files at the root map to ".".
func locationOf(file string) string {
	return filepath.ToSlash(filepath.Dir(file))
}

// Prune removes patterns older than the configured age whose success rate is
// below the configured minimum.
func (m *SearchMemory) Prune(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.config.MaxAge)
	n, err := m.store.PrunePatterns(ctx, cutoff, m.config.MinSuccessRate)
	if err != nil {
		return 0, fmt.Errorf("prune patterns: %w", err)
	}
	if n > 0 {
		logger.Info("pruned %d search patterns", n)
	}
	return n, nil
}
