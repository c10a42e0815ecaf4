// Package tools defines the MCP tools that expose knowledge-graph
// operations. Tool names, input schemas, and result texts are the wire
// contract memory clients depend on, so they only change deliberately.
package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/soundprediction/memento"
)

// Tool pairs an MCP tool definition with its handler.
type Tool struct {
	Definition mcp.Tool
	Handle     server.ToolHandlerFunc
}

// Registry builds the graph tools around one Memento instance.
type Registry struct {
	graph  memento.Memento
	logger *slog.Logger
}

// NewRegistry creates a Registry for the given graph manager.
func NewRegistry(graph memento.Memento, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{graph: graph, logger: logger}
}

// All returns every graph tool.
func (r *Registry) All() []Tool {
	return []Tool{
		r.createEntitiesTool(),
		r.createRelationsTool(),
		r.addObservationsTool(),
		r.deleteEntitiesTool(),
		r.deleteObservationsTool(),
		r.deleteRelationsTool(),
		r.readGraphTool(),
		r.searchNodesTool(),
		r.openNodesTool(),
	}
}

// RegisterAll adds every graph tool to the server.
func (r *Registry) RegisterAll(s *server.MCPServer) {
	for _, t := range r.All() {
		s.AddTool(t.Definition, t.Handle)
	}
}

// jsonResult renders v as two-space indented JSON, the format memory
// clients expect.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(string(data))
}

// errorResult flattens any failure into the "Error: ..." text contract.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err))
}
