// ABOUTME: Serve command starts the HTTP surface for the advisor tools
// ABOUTME: Shuts down gracefully on SIGINT or SIGTERM
package commands

import (
	"github.com/spf13/cobra"

	"github.com/harper/podcast-wisdom/internal/httpapi"
)

var (
	serveAddr string
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP tool server",
		Long: `Start an HTTP server exposing the advisor tools.

Endpoints:
  GET  /healthz       liveness
  GET  /tools         tool definitions with JSON schemas
  POST /tools/:name   call a tool with a JSON object of arguments
  GET  /stats         row counts per table

Examples:
  wisdom serve
  wisdom serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default $WISDOM_HTTP_ADDR or :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	stack, err := newAdvisorStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	addr := serveAddr
	if addr == "" {
		addr = stack.cfg.HTTPAddr
	}

	return httpapi.NewServer(stack.service, stack.store, stack.logger).ListenAndServe(ctx, addr)
}
