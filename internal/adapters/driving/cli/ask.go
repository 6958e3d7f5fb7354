package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/domain"
)

var (
	askJSON  bool
	askTrace bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from your notes",
	Long: `Retrieves notes relevant to the question and answers it with them as
context. If retrieval fails, a keyword-only search is tried before answering
without context. The answer always states which of these happened.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full response as JSON")
	askCmd.Flags().BoolVar(&askTrace, "trace", false, "print the visited query states")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errNotConfigured("query")
	}

	resp, err := queryService.Query(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, resp)
	}
	outputAnswer(cmd, resp)
	return nil
}

func outputAnswer(cmd *cobra.Command, resp *domain.QueryResponse) {
	st := newStyler(cmd.OutOrStdout())

	cmd.Println(resp.AnswerText)
	cmd.Println()

	switch {
	case !resp.ContextUsed:
		cmd.Println(st.Warn("No relevant notes were found; answered without context."))
	case resp.FallbackUsed:
		cmd.Println(st.Warn("Primary search failed; answered from keyword matches."))
	}
	if resp.GenerationFailed {
		cmd.Println(st.Warn("Answer generation failed; showing the retrieved notes instead."))
	}

	if len(resp.Sources) > 0 {
		cmd.Println(st.Title("Sources:"))
		for _, s := range resp.Sources {
			cmd.Printf("  - %s\n", s)
		}
	}
	cmd.Println(st.Dim(fmt.Sprintf("%d documents, %s search, %dms", resp.RetrievedCount, methodLabel(resp.Method), resp.SearchTimeMs)))

	if askTrace {
		states := make([]string, len(resp.States))
		for i, s := range resp.States {
			states[i] = string(s)
		}
		cmd.Println(st.Dim("States: " + strings.Join(states, " -> ")))
	}
}

func methodLabel(m domain.SearchMethod) string {
	if m == "" {
		return "no"
	}
	return string(m)
}
