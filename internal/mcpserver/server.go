package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all TerraShield tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("terrashield", "0.1.0")
	client := NewTerraShieldClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolQuotePremium, h.HandleQuotePremium)
	s.AddTool(ToolAssessRisk, h.HandleAssessRisk)
	s.AddTool(ToolListLocations, h.HandleListLocations)
	s.AddTool(ToolWeatherLookup, h.HandleWeatherLookup)

	return s
}
