package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_Use(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	assert.Contains(t, serveCmd.Long, "/api/sessions/{id}/events")
}

func TestServeCmd_AddrFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, "a", flag.Shorthand)
	assert.Equal(t, ":8080", flag.DefValue)
}

func TestServeCmd_MCPFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("mcp")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
	assert.Contains(t, serveCmd.Long, "/mcp")
}

func TestServeCmd_RejectsArgs(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "serve", "extra")

	assert.Error(t, err)
}

func TestMCPCmd_Subcommands(t *testing.T) {
	var serve bool
	for _, c := range mcpCmd.Commands() {
		if c.Name() == "serve" {
			serve = true
		}
	}
	assert.True(t, serve)

	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_HelpOutput(t *testing.T) {
	out, err := execute(t, "mcp", "serve", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "Model Context Protocol tools")
	assert.Contains(t, out, "arvision mcp serve --port 8081")
}
