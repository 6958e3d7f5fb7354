package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	memoryLimit          int
	memoryMinOccurrences int
	memoryJSON           bool
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect search memory",
	Long:  `Shows what past queries found and where recurring topics live.`,
}

var memorySuggestCmd = &cobra.Command{
	Use:   "suggest [query]",
	Short: "Suggest past queries related to a query",
	RunE:  runMemorySuggest,
}

var memoryTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List recurring topics and where they were found",
	Args:  cobra.NoArgs,
	RunE:  runMemoryTopics,
}

var memoryPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Forget old unsuccessful queries",
	Args:  cobra.NoArgs,
	RunE:  runMemoryPrune,
}

func init() {
	memorySuggestCmd.Flags().IntVarP(&memoryLimit, "limit", "n", 5, "maximum number of suggestions")
	memorySuggestCmd.Flags().BoolVar(&memoryJSON, "json", false, "output as JSON")
	memoryTopicsCmd.Flags().IntVar(&memoryMinOccurrences, "min", 2, "minimum successful occurrences")
	memoryTopicsCmd.Flags().BoolVar(&memoryJSON, "json", false, "output as JSON")

	memoryCmd.AddCommand(memorySuggestCmd)
	memoryCmd.AddCommand(memoryTopicsCmd)
	memoryCmd.AddCommand(memoryPruneCmd)
	rootCmd.AddCommand(memoryCmd)
}

func runMemorySuggest(cmd *cobra.Command, args []string) error {
	if memoryService == nil {
		return errNotConfigured("memory")
	}

	suggestions, err := memoryService.Suggest(cmd.Context(), strings.Join(args, " "), memoryLimit)
	if err != nil {
		return err
	}
	if memoryJSON {
		return printJSON(cmd, suggestions)
	}

	if len(suggestions) == 0 {
		cmd.Println("No related past queries.")
		return nil
	}
	st := newStyler(cmd.OutOrStdout())
	for _, s := range suggestions {
		cmd.Printf("  %s %s\n", st.Title(s.Query), st.Dim(formatRate(s.SuccessRate)))
		for _, f := range s.ResultFiles {
			cmd.Printf("      %s\n", f)
		}
	}
	return nil
}

func runMemoryTopics(cmd *cobra.Command, _ []string) error {
	if memoryService == nil {
		return errNotConfigured("memory")
	}

	topics, err := memoryService.TopicLocations(cmd.Context(), memoryMinOccurrences)
	if err != nil {
		return err
	}
	if memoryJSON {
		return printJSON(cmd, topics)
	}

	if len(topics) == 0 {
		cmd.Println("No recurring topics yet.")
		return nil
	}
	for _, t := range topics {
		cmd.Printf("  %s (%d): %s\n", t.Topic, t.Occurrences, strings.Join(t.Locations, ", "))
	}
	return nil
}

func runMemoryPrune(cmd *cobra.Command, _ []string) error {
	if memoryService == nil {
		return errNotConfigured("memory")
	}

	n, err := memoryService.Prune(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Pruned %d search patterns.\n", n)
	return nil
}

func formatRate(rate float64) string {
	return fmt.Sprintf("(%.0f%% successful)", rate*100)
}
