package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/soundprediction/memento/pkg/telemetry"
	"github.com/soundprediction/memento/pkg/types"
)

func relationItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"from": map[string]any{
				"type":        "string",
				"description": "The name of the entity where the relation starts",
			},
			"to": map[string]any{
				"type":        "string",
				"description": "The name of the entity where the relation ends",
			},
			"relationType": map[string]any{
				"type":        "string",
				"description": "The type of the relation",
			},
		},
		"required": []string{"from", "to", "relationType"},
	}
}

func (r *Registry) createRelationsTool() Tool {
	return Tool{
		Definition: mcp.NewTool("create_relations",
			mcp.WithDescription("Create multiple new relations between entities in the knowledge graph. Relations should be in active voice"),
			mcp.WithArray("relations",
				mcp.Required(),
				mcp.Items(relationItemSchema()),
			),
		),
		Handle: r.handleCreateRelations,
	}
}

func (r *Registry) handleCreateRelations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = telemetry.WithOperation(ctx, "create_relations")

	var args struct {
		Relations []types.Relation `json:"relations"`
	}
	if err := request.BindArguments(&args); err != nil {
		return errorResult(err), nil
	}

	created, err := r.graph.CreateRelations(ctx, args.Relations)
	if err != nil {
		r.logger.ErrorContext(ctx, "create_relations failed", "error", err)
		return errorResult(err), nil
	}
	return jsonResult(created), nil
}

func (r *Registry) deleteRelationsTool() Tool {
	return Tool{
		Definition: mcp.NewTool("delete_relations",
			mcp.WithDescription("Delete multiple relations from the knowledge graph"),
			mcp.WithArray("relations",
				mcp.Required(),
				mcp.Description("An array of relations to delete"),
				mcp.Items(relationItemSchema()),
			),
		),
		Handle: r.handleDeleteRelations,
	}
}

func (r *Registry) handleDeleteRelations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = telemetry.WithOperation(ctx, "delete_relations")

	var args struct {
		Relations []types.Relation `json:"relations"`
	}
	if err := request.BindArguments(&args); err != nil {
		return errorResult(err), nil
	}

	if err := r.graph.DeleteRelations(ctx, args.Relations); err != nil {
		r.logger.ErrorContext(ctx, "delete_relations failed", "error", err)
		return errorResult(err), nil
	}
	return mcp.NewToolResultText("Relations deleted successfully"), nil
}
