package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index the workspace or specific files",
	Long: `Indexes documents for search.

Without arguments the whole workspace is synchronised: changed files are
re-embedded, unchanged files are skipped by checksum, and documents whose
file was deleted are removed. With arguments only the given files are indexed.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output the per-file report as JSON")
	rootCmd.AddCommand(indexCmd)
}

// outcomeJSON is the JSON shape of one indexed file.
type outcomeJSON struct {
	Path       string `json:"path"`
	DocumentID string `json:"documentId"`
	Skipped    bool   `json:"skipped,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
	Error      string `json:"error,omitempty"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errNotConfigured("sync")
	}

	var (
		report *domain.BatchReport
		err    error
	)
	if len(args) == 0 {
		cmd.Println("Synchronising workspace...")
		report, err = syncService.Sync(cmd.Context())
	} else {
		paths := make([]string, len(args))
		for i, a := range args {
			if paths[i], err = filepath.Abs(a); err != nil {
				return fmt.Errorf("resolve %s: %w", a, err)
			}
		}
		report, err = syncService.IndexPaths(cmd.Context(), paths)
	}
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	if indexJSON {
		return outputReportJSON(cmd, report)
	}
	outputReport(cmd, report)
	return nil
}

func outputReportJSON(cmd *cobra.Command, report *domain.BatchReport) error {
	out := make([]outcomeJSON, len(report.Outcomes))
	for i, o := range report.Outcomes {
		out[i] = outcomeJSON{
			Path:       o.Path,
			DocumentID: o.DocumentID,
			Skipped:    o.Skipped,
			Chunks:     o.Chunks,
		}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	return printJSON(cmd, out)
}

func outputReport(cmd *cobra.Command, report *domain.BatchReport) {
	st := newStyler(cmd.OutOrStdout())
	for _, o := range report.Outcomes {
		if o.Err != nil {
			cmd.Printf("  %s %s: %v\n", st.Warn("failed"), o.Path, o.Err)
		}
	}
	cmd.Printf("%d indexed, %d unchanged, %d failed, %d removed\n",
		report.Indexed, report.Skipped, report.Failed, report.Removed)
}
