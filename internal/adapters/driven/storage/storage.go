// Package storage holds helpers shared by the document store adapters.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// ChecksumLookup returns the stored checksum of a document and whether a
// record exists.
type ChecksumLookup func(ctx context.Context, documentID string) (string, bool, error)

// ReindexCandidates reads each path from disk and compares its checksum to
// the stored one. Paths that cannot be found are reported as Missing.
func ReindexCandidates(ctx context.Context, paths []string, lookup ChecksumLookup) ([]domain.ReindexCandidate, error) {
	candidates := make([]domain.ReindexCandidate, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c := domain.ReindexCandidate{
			Path:       path,
			DocumentID: domain.DocumentID(path),
		}

		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			c.Missing = true
			candidates = append(candidates, c)
			continue
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		c.Checksum = domain.Checksum(string(content))

		stored, ok, err := lookup(ctx, c.DocumentID)
		if err != nil {
			return nil, err
		}
		c.NeedsIndexing = !ok || stored != c.Checksum
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// Rank sorts results by descending score and truncates them to limit.
// Equal scores keep their scan order. A limit of zero or less keeps every
// result.
func Rank(results []domain.ScoredDocument, limit int) []domain.ScoredDocument {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
