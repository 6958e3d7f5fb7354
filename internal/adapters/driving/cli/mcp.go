package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/adapters/driving/mcp"
	"github.com/custodia-labs/recall/internal/logger"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
and query the workspace.

By default the server communicates over stdio using JSON-RPC. Use --port to
serve over HTTP instead, for example with MCP Inspector.

Examples:
  recall mcp serve -w ~/notes
  recall mcp serve -w ~/notes --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "recall": {
        "command": "/path/to/recall",
        "args": ["mcp", "serve", "-w", "/path/to/notes"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// mcpPorts builds the MCP ports from the configured services.
func mcpPorts() *mcp.Ports {
	return &mcp.Ports{
		Retrieval:     retrievalService,
		Query:         queryService,
		Sync:          syncService,
		Document:      documentService,
		Memory:        memoryService,
		SearchOptions: retrievalOptions(),
	}
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errNotConfigured("mcp serve")
	}

	// stdout belongs to the protocol in stdio mode.
	logger.SetOutput(cmd.ErrOrStderr())

	server, err := mcp.NewServer(mcpPorts())
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
