package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Re-embed documents after an embedding provider change",
	Long: `Re-embeds every document whose stored embedding was produced by a
provider other than the configured one. Until then such documents are
invisible to semantic search.`,
	Args: cobra.NoArgs,
	RunE: runReembed,
}

func init() {
	rootCmd.AddCommand(reembedCmd)
}

func runReembed(cmd *cobra.Command, _ []string) error {
	if reembedder == nil {
		return errNotConfigured("re-embed")
	}

	report, err := reembedder.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("re-embed failed: %w", err)
	}

	if report.Total == 0 {
		cmd.Printf("All documents are embedded with %s.\n", report.Provider)
		return nil
	}
	cmd.Printf("Re-embedded %d of %d documents with %s (%d failed).\n",
		report.Done, report.Total, report.Provider, report.Failed)
	return nil
}
