package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Exposes the reference catalog, descriptor loading and candidate scoring as
Model Context Protocol tools, and running sessions as resources.

The server speaks JSON-RPC over stdio unless --port is given, in which case it
serves streamable HTTP (for the MCP Inspector or remote clients).

Examples:
  arvision mcp serve
  arvision mcp serve --port 8081`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if recognitionService == nil {
		return errors.New("recognition service not configured")
	}
	server, err := mcp.NewServer(&mcp.Ports{
		Recognition: recognitionService,
		Sessions:    sessionManager,
	})
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}
	addr := fmt.Sprintf(":%d", mcpPort)
	// stdout stays clean in stdio mode; here it is free for a banner.
	cmd.Printf("MCP server listening on http://localhost%s/\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
