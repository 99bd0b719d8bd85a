// ABOUTME: MCP server command implementation for tally.
// ABOUTME: Starts the MCP server in stdio mode for AI agent integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/tally/internal/logging"
	mcppkg "github.com/2389-research/tally/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <record-file>",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, allowing AI agents to add, search,
and update records in the given file. Tool calls are logged to the same
<record-file>_log as the interactive menu.`,
	Args:        requireRecordFile,
	Annotations: map[string]string{recordFileAnnotation: "true"},
	RunE:        runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	defer closeSession()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server, err := mcppkg.NewServer(globalController, version,
		mcppkg.WithLogger(logging.Named(globalLogger, "mcp")),
	)
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}
