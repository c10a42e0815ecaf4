package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/soundprediction/memento/pkg/telemetry"
)

func (r *Registry) readGraphTool() Tool {
	return Tool{
		Definition: mcp.NewTool("read_graph",
			mcp.WithDescription("Read the entire knowledge graph"),
		),
		Handle: r.handleReadGraph,
	}
}

func (r *Registry) handleReadGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = telemetry.WithOperation(ctx, "read_graph")

	graph, err := r.graph.ReadGraph(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "read_graph failed", "error", err)
		return errorResult(err), nil
	}
	return jsonResult(graph), nil
}

func (r *Registry) searchNodesTool() Tool {
	return Tool{
		Definition: mcp.NewTool("search_nodes",
			mcp.WithDescription("Search for nodes in the knowledge graph based on a query"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("The search query to match against entity names, types, and observation content"),
			),
		),
		Handle: r.handleSearchNodes,
	}
}

func (r *Registry) handleSearchNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = telemetry.WithOperation(ctx, "search_nodes")

	var args struct {
		Query string `json:"query"`
	}
	if err := request.BindArguments(&args); err != nil {
		return errorResult(err), nil
	}

	graph, err := r.graph.SearchNodes(ctx, args.Query)
	if err != nil {
		r.logger.ErrorContext(ctx, "search_nodes failed", "error", err)
		return errorResult(err), nil
	}
	return jsonResult(graph), nil
}

func (r *Registry) openNodesTool() Tool {
	return Tool{
		Definition: mcp.NewTool("open_nodes",
			mcp.WithDescription("Open specific nodes in the knowledge graph by their names"),
			mcp.WithArray("names",
				mcp.Required(),
				mcp.Description("An array of entity names to retrieve"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		),
		Handle: r.handleOpenNodes,
	}
}

func (r *Registry) handleOpenNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = telemetry.WithOperation(ctx, "open_nodes")

	var args struct {
		Names []string `json:"names"`
	}
	if err := request.BindArguments(&args); err != nil {
		return errorResult(err), nil
	}

	graph, err := r.graph.OpenNodes(ctx, args.Names)
	if err != nil {
		r.logger.ErrorContext(ctx, "open_nodes failed", "error", err)
		return errorResult(err), nil
	}
	return jsonResult(graph), nil
}
