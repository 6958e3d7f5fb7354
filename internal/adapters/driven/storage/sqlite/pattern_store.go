package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// patternStore implements driven.PatternStore.
type patternStore struct {
	store *Store
}

var _ driven.PatternStore = (*patternStore)(nil)

// RecordPattern adds one occurrence of (query, files).
// The query is normalised and files are sorted before keying.
func (s *patternStore) RecordPattern(ctx context.Context, query string, files []string, success bool, at time.Time) error {
	query = normaliseQuery(query)
	if query == "" {
		return fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	sorted := append(make([]string, 0, len(files)), files...)
	sort.Strings(sorted)
	filesJSON, err := json.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("marshalling files: %w", err)
	}

	successInc := 0
	if success {
		successInc = 1
	}

	return s.store.with(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO search_patterns (id, query, files_key, result_files, success_count, total_count, last_used, created_at)
			VALUES (?, ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT(query, files_key) DO UPDATE SET
				success_count = success_count + excluded.success_count,
				total_count = total_count + 1,
				last_used = excluded.last_used
		`, uuid.New().String(), query, strings.Join(sorted, "\n"), string(filesJSON),
			successInc, toUnix(at), toUnix(at))
		if err != nil {
			return fmt.Errorf("recording pattern: %w", err)
		}
		return nil
	})
}

// ListPatterns returns all patterns, most recently used first.
func (s *patternStore) ListPatterns(ctx context.Context) ([]domain.SearchPattern, error) {
	var patterns []domain.SearchPattern //nolint:prealloc // size unknown from query
	err := s.store.with(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, query, result_files, success_count, total_count, last_used, created_at
			FROM search_patterns
			ORDER BY last_used DESC, query
		`)
		if err != nil {
			return fmt.Errorf("querying patterns: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPattern(rows)
			if err != nil {
				return err
			}
			patterns = append(patterns, *p)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating patterns: %w", err)
		}
		return nil
	})
	return patterns, err
}

// PrunePatterns deletes patterns unused since cutoff with a success rate below minRate.
func (s *patternStore) PrunePatterns(ctx context.Context, cutoff time.Time, minRate float64) (int, error) {
	var n int64
	err := s.store.with(func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
			DELETE FROM search_patterns
			WHERE last_used < ? AND CAST(success_count AS REAL) / MAX(total_count, 1) < ?
		`, toUnix(cutoff), minRate)
		if err != nil {
			return fmt.Errorf("pruning patterns: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	return int(n), err
}

func scanPattern(rows *sql.Rows) (*domain.SearchPattern, error) {
	var p domain.SearchPattern
	var filesJSON string
	var lastUsed, created int64

	if err := rows.Scan(&p.ID, &p.Query, &filesJSON, &p.SuccessCount, &p.TotalCount,
		&lastUsed, &created); err != nil {
		return nil, fmt.Errorf("scanning pattern: %w", err)
	}

	if err := json.Unmarshal([]byte(filesJSON), &p.ResultFiles); err != nil {
		return nil, fmt.Errorf("unmarshalling result files: %w", err)
	}
	p.LastUsed = fromUnix(lastUsed)
	p.CreatedAt = fromUnix(created)
	return &p, nil
}

// normaliseQuery lower-cases a query and collapses whitespace.
func normaliseQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
