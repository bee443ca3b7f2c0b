package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/arvision/internal/adapters/driving/mcp"
)

var (
	serveAddr string
	serveMCP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for browser bridges",
	Long: `Starts the HTTP API. A browser bridge creates sessions, posts engine events
to /api/sessions/{id}/events and reads the session state back. Descriptor files
from the configured source are served under /composant/image-a-reconnaitre/.

With --mcp the Model Context Protocol endpoint is mounted at /mcp as well.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "listen address")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "mount the MCP endpoint at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if recognitionService == nil {
		return errors.New("recognition service not configured")
	}
	ports := &httpapi.Ports{
		Recognition: recognitionService,
		Sessions:    sessionManager,
		Events:      eventRouter,
		Install:     installService,
		Descriptors: descriptorSource,
	}
	if serveMCP {
		mcpServer, err := mcp.NewServer(&mcp.Ports{Recognition: recognitionService, Sessions: sessionManager})
		if err != nil {
			return err
		}
		ports.MCP = mcpServer.Handler()
	}

	server, err := httpapi.NewServer(ports)
	if err != nil {
		return err
	}
	cmd.Printf("HTTP API listening on %s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}
