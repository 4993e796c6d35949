// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Exposes the advisor tools to LLM agents over stdio
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/podcast-wisdom/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the advisor tools as an MCP (Model Context Protocol) server over
stdio. Logs go to stderr so they never corrupt the protocol stream.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by the agent host)
  wisdom mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "wisdom": {
  #       "command": "wisdom",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	stack, err := newAdvisorStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	server, _ := mcp.NewServer(stack.service, versionInfo.Version)

	stack.logger.WithField("store", stack.cfg.Store).Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		stack.logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
