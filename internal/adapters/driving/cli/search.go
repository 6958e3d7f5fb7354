package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/scoring"
)

// Search modes accepted by --mode.
const (
	modeHybrid   = "hybrid"
	modeSemantic = "semantic"
	modeKeyword  = "keyword"
)

var (
	searchLimit     int
	searchMode      string
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Searches indexed documents without generating an answer.

By default semantic and keyword rankings are merged with the configured
weights. Use --mode to run a single ranking.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", modeHybrid, "search mode: hybrid, semantic or keyword")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", -1, "minimum hybrid score (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchResultJSON is the JSON shape of one search result.
type searchResultJSON struct {
	ID            string   `json:"id"`
	Path          string   `json:"path"`
	Title         string   `json:"title,omitempty"`
	Score         float64  `json:"score"`
	SemanticScore float64  `json:"semanticScore"`
	KeywordScore  float64  `json:"keywordScore"`
	Tags          []string `json:"tags,omitempty"`
	Highlights    []string `json:"highlights,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errNotConfigured("search")
	}

	query := strings.Join(args, " ")
	opts := retrievalOptions()
	if searchLimit > 0 {
		opts.Limit = searchLimit
	}
	if searchThreshold >= 0 {
		opts.Threshold = searchThreshold
	}

	var (
		results []domain.ScoredDocument
		err     error
	)
	ctx := cmd.Context()
	switch searchMode {
	case modeHybrid:
		results, err = retrievalService.HybridSearch(ctx, query, opts)
	case modeSemantic:
		results, err = retrievalService.SemanticSearch(ctx, query, opts.Limit)
	case modeKeyword:
		results, err = retrievalService.KeywordSearch(ctx, query, opts.Limit)
	default:
		return fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidInput, searchMode)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// retrievalOptions returns the hybrid options from settings, or the defaults.
func retrievalOptions() domain.HybridOptions {
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			return s.Retrieval.HybridOptions()
		}
	}
	return domain.DefaultRetrievalSettings().HybridOptions()
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredDocument) error {
	out := make([]searchResultJSON, len(results))
	for i, r := range results {
		out[i] = searchResultJSON{
			ID:            r.Document.ID,
			Path:          r.Document.SourcePath,
			Title:         r.Document.Title,
			Score:         r.Score,
			SemanticScore: r.SemanticScore,
			KeywordScore:  r.KeywordScore,
			Tags:          r.Document.Tags,
			Highlights:    r.Highlights,
		}
	}
	return printJSON(cmd, out)
}

func outputSearchTable(cmd *cobra.Command, results []domain.ScoredDocument) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	st := newStyler(cmd.OutOrStdout())
	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Title (Score)
		doc := results[i].Document
		title := doc.Title
		if title == "" {
			title = doc.SourcePath
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, st.Title(title), results[i].Score)
		cmd.Printf("      %s\n", st.Dim(doc.SourcePath))
		if len(doc.Tags) > 0 {
			cmd.Printf("      Tags: %s\n", strings.Join(doc.Tags, ", "))
		}
		if len(results[i].Highlights) > 0 {
			cmd.Printf("      %s\n", scoring.Truncate(results[i].Highlights[0], 160))
		}
		cmd.Println()
	}
	return nil
}
