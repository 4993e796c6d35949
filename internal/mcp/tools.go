// ABOUTME: MCP tool definitions and registration for the podcast wisdom server
// ABOUTME: Each advisor definition becomes an mcp.Tool with its JSON schema
package mcp

import (
	"github.com/harper/podcast-wisdom/internal/advisor"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ServerName is advertised to MCP clients
const ServerName = "podcast-wisdom"

// NewServer creates an MCP server with every advisor tool registered
func NewServer(service *advisor.Service, version string) (*mcpserver.MCPServer, *Handlers) {
	server := mcpserver.NewMCPServer(
		ServerName,
		version,
		mcpserver.WithToolCapabilities(false),
	)
	return server, RegisterTools(server, service)
}

// RegisterTools registers all advisor tools with the server
func RegisterTools(server *mcpserver.MCPServer, service *advisor.Service) *Handlers {
	handlers := &Handlers{service: service}

	for _, def := range advisor.Definitions() {
		server.AddTool(Tool(def), handlers.For(def.Name))
	}

	return handlers
}

// Tool converts an advisor definition to its MCP form
func Tool(def advisor.Definition) mcp.Tool {
	schema := def.InputSchema()
	properties, _ := schema["properties"].(map[string]any)
	return mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   def.RequiredParams(),
		},
	}
}
