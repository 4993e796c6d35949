// ABOUTME: MCP tool handler implementations for the podcast wisdom server
// ABOUTME: Handlers validate arguments, dispatch to the advisor and map errors to tool errors
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/podcast-wisdom/internal/advisor"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Handlers adapts the advisor service to MCP tool calls
type Handlers struct {
	service *advisor.Service
}

// For returns the handler for one tool
func (h *Handlers) For(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return h.Call(ctx, name, request.GetArguments()), nil
	}
}

// Call runs a tool and always returns a result. Failures are reported as
// tool errors so the client sees them instead of a protocol error.
func (h *Handlers) Call(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	req, err := advisor.ParseRequest(name, args)
	if err != nil {
		return mcp.NewToolResultError(errorText(name, err))
	}

	text, err := h.service.Dispatch(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(errorText(name, err))
	}
	return mcp.NewToolResultText(text)
}

func errorText(name string, err error) string {
	switch {
	case errors.Is(err, advisor.ErrUnknownTool):
		return "Unknown tool: " + name
	case errors.Is(err, advisor.ErrInvalidArgument):
		return err.Error()
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
