package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/domain"
)

var (
	opTags    []string
	opArgs    string
	opFromArg bool
)

var opCmd = &cobra.Command{
	Use:   "op",
	Short: "Run a workspace operation",
	Long: `Runs file and tool operations inside the workspace. Paths are relative
to the workspace root and may not escape it. Files written with write,
append or section are re-indexed immediately.

Content is read from standard input unless --content-arg is given, in which
case the last argument is the content.`,
}

var opReadCmd = &cobra.Command{
	Use:   "read [path]",
	Short: "Print a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, domain.ReadOp{Path: args[0]})
	},
}

var opWriteCmd = &cobra.Command{
	Use:   "write [path] [content]",
	Short: "Create or replace a file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := opContent(cmd, args)
		if err != nil {
			return err
		}
		var tags []string
		if cmd.Flags().Changed("tag") {
			tags = opTags
		}
		return runOp(cmd, domain.WriteOp{Path: args[0], Content: content, Tags: tags})
	},
}

var opAppendCmd = &cobra.Command{
	Use:   "append [path] [content]",
	Short: "Append to a file, merging overlapping text",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := opContent(cmd, args)
		if err != nil {
			return err
		}
		return runOp(cmd, domain.AppendOp{Path: args[0], Content: content})
	},
}

var opSectionCmd = &cobra.Command{
	Use:   "section [path] [heading] [content]",
	Short: "Replace the body of a markdown section",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := opContent(cmd, args[1:])
		if err != nil {
			return err
		}
		return runOp(cmd, domain.UpdateSectionOp{Path: args[0], Heading: args[1], Content: content})
	},
}

var opMkdirCmd = &cobra.Command{
	Use:   "mkdir [path]",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, domain.CreateFolderOp{Path: args[0]})
	},
}

var opListCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		return runOp(cmd, domain.ListOp{Path: path})
	},
}

var opToolCmd = &cobra.Command{
	Use:   "tool [name]",
	Short: "Call a tool (search, reindex)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toolArgs := map[string]any{}
		if opArgs != "" {
			if err := json.Unmarshal([]byte(opArgs), &toolArgs); err != nil {
				return fmt.Errorf("%w: --args must be a JSON object: %w", domain.ErrInvalidInput, err)
			}
		}
		result, err := executeOp(cmd, domain.ToolCallOp{Name: args[0], Args: toolArgs})
		if err != nil {
			return err
		}
		if args[0] == domain.ToolSearch {
			return outputSearchTable(cmd, result.Results)
		}
		outputOpResult(cmd, result)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{opWriteCmd, opAppendCmd, opSectionCmd} {
		c.Flags().BoolVar(&opFromArg, "content-arg", false, "take content from the last argument instead of stdin")
	}
	opWriteCmd.Flags().StringSliceVarP(&opTags, "tag", "t", nil, "tags to attach to the document")
	opToolCmd.Flags().StringVar(&opArgs, "args", "", `tool arguments as a JSON object, e.g. '{"query":"cats"}'`)

	opCmd.AddCommand(opReadCmd, opWriteCmd, opAppendCmd, opSectionCmd, opMkdirCmd, opListCmd, opToolCmd)
	rootCmd.AddCommand(opCmd)
}

// opContent returns the operation content from args[1] or standard input.
// args[0] is the path or heading preceding the content.
func opContent(cmd *cobra.Command, args []string) (string, error) {
	if opFromArg {
		if len(args) < 2 {
			return "", fmt.Errorf("%w: --content-arg needs a content argument", domain.ErrInvalidInput)
		}
		return args[1], nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("%w: unexpected argument %q (use --content-arg)", domain.ErrInvalidInput, args[1])
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}

func runOp(cmd *cobra.Command, op domain.Operation) error {
	result, err := executeOp(cmd, op)
	if err != nil {
		return err
	}
	outputOpResult(cmd, result)
	return nil
}

func executeOp(cmd *cobra.Command, op domain.Operation) (*domain.OperationResult, error) {
	if workspaceService == nil {
		return nil, errNotConfigured("workspace")
	}

	result, err := workspaceService.Execute(cmd.Context(), op)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op.Kind(), err)
	}
	return result, nil
}

func outputOpResult(cmd *cobra.Command, result *domain.OperationResult) {
	switch result.Kind {
	case domain.OpRead:
		cmd.Print(result.Content)
		if !strings.HasSuffix(result.Content, "\n") {
			cmd.Println()
		}
	case domain.OpList:
		for _, e := range result.Entries {
			cmd.Println(e)
		}
	case domain.OpToolCall:
		if result.Content != "" {
			cmd.Println(result.Content)
		}
		if result.Path != "" {
			cmd.Printf("%s reindexed: %t\n", result.Path, result.Reindexed)
		}
	default:
		cmd.Printf("%s %s", result.Kind, result.Path)
		if result.Reindexed {
			cmd.Print(" (reindexed)")
		}
		cmd.Println()
	}
}
