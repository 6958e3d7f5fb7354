package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	stats, err := documentService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}
	if statsJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Documents:       %d\n", stats.Documents)
	cmd.Printf("Chunks:          %d\n", stats.Chunks)
	cmd.Printf("Embeddings:      %d\n", stats.Embeddings)
	cmd.Printf("Tags:            %d\n", stats.Tags)
	cmd.Printf("Search patterns: %d\n", stats.SearchPatterns)

	if len(stats.EmbeddingsByProvider) > 0 {
		providers := make([]string, 0, len(stats.EmbeddingsByProvider))
		for p := range stats.EmbeddingsByProvider {
			providers = append(providers, p)
		}
		sort.Strings(providers)

		cmd.Println("Embeddings by provider:")
		for _, p := range providers {
			cmd.Printf("  %s: %d\n", p, stats.EmbeddingsByProvider[p])
		}
	}
	return nil
}
