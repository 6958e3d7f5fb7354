package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var watchNoSync bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index up to date while files change",
	Long: `Synchronises the workspace once and then watches it for changes.
Created and modified files are re-indexed, deleted files are removed.
Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoSync, "no-sync", false, "skip the initial workspace sync")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if watcher == nil {
		return errNotConfigured("watch")
	}

	ctx := cmd.Context()
	if !watchNoSync && syncService != nil {
		report, err := syncService.Sync(ctx)
		if err != nil {
			return fmt.Errorf("initial sync failed: %w", err)
		}
		outputReport(cmd, report)
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", workspaceDir)
	err := watcher.Run(ctx)
	if err != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
