package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/soundprediction/memento/pkg/telemetry"
	"github.com/soundprediction/memento/pkg/types"
)

func (r *Registry) createEntitiesTool() Tool {
	return Tool{
		Definition: mcp.NewTool("create_entities",
			mcp.WithDescription("Create multiple new entities in the knowledge graph"),
			mcp.WithArray("entities",
				mcp.Required(),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":       map[string]any{"type": "string", "description": "The name of the entity"},
						"entityType": map[string]any{"type": "string", "description": "The type of the entity"},
						"observations": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "An array of observation contents associated with the entity",
						},
					},
					"required": []string{"name", "entityType", "observations"},
				}),
			),
		),
		Handle: r.handleCreateEntities,
	}
}

func (r *Registry) handleCreateEntities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = telemetry.WithOperation(ctx, "create_entities")

	var args struct {
		Entities []types.Entity `json:"entities"`
	}
	if err := request.BindArguments(&args); err != nil {
		return errorResult(err), nil
	}

	created, err := r.graph.CreateEntities(ctx, args.Entities)
	if err != nil {
		r.logger.ErrorContext(ctx, "create_entities failed", "error", err)
		return errorResult(err), nil
	}
	return jsonResult(created), nil
}

func (r *Registry) addObservationsTool() Tool {
	return Tool{
		Definition: mcp.NewTool("add_observations",
			mcp.WithDescription("Add new observations to existing entities in the knowledge graph"),
			mcp.WithArray("observations",
				mcp.Required(),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"entityName": map[string]any{
							"type":        "string",
							"description": "The name of the entity to add the observations to",
						},
						"contents": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "An array of observation contents to add",
						},
					},
					"required": []string{"entityName", "contents"},
				}),
			),
		),
		Handle: r.handleAddObservations,
	}
}

func (r *Registry) handleAddObservations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = telemetry.WithOperation(ctx, "add_observations")

	var args struct {
		Observations []types.ObservationAddition `json:"observations"`
	}
	if err := request.BindArguments(&args); err != nil {
		return errorResult(err), nil
	}

	results, err := r.graph.AddObservations(ctx, args.Observations)
	if err != nil {
		r.logger.ErrorContext(ctx, "add_observations failed", "error", err)
		return errorResult(err), nil
	}
	return jsonResult(results), nil
}

func (r *Registry) deleteEntitiesTool() Tool {
	return Tool{
		Definition: mcp.NewTool("delete_entities",
			mcp.WithDescription("Delete multiple entities and their associated relations from the knowledge graph"),
			mcp.WithArray("entityNames",
				mcp.Required(),
				mcp.Description("An array of entity names to delete"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		),
		Handle: r.handleDeleteEntities,
	}
}

func (r *Registry) handleDeleteEntities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = telemetry.WithOperation(ctx, "delete_entities")

	var args struct {
		EntityNames []string `json:"entityNames"`
	}
	if err := request.BindArguments(&args); err != nil {
		return errorResult(err), nil
	}

	if err := r.graph.DeleteEntities(ctx, args.EntityNames); err != nil {
		r.logger.ErrorContext(ctx, "delete_entities failed", "error", err)
		return errorResult(err), nil
	}
	return mcp.NewToolResultText("Entities deleted successfully"), nil
}

func (r *Registry) deleteObservationsTool() Tool {
	return Tool{
		Definition: mcp.NewTool("delete_observations",
			mcp.WithDescription("Delete specific observations from entities in the knowledge graph"),
			mcp.WithArray("deletions",
				mcp.Required(),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"entityName": map[string]any{
							"type":        "string",
							"description": "The name of the entity containing the observations",
						},
						"observations": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "An array of observations to delete",
						},
					},
					"required": []string{"entityName", "observations"},
				}),
			),
		),
		Handle: r.handleDeleteObservations,
	}
}

func (r *Registry) handleDeleteObservations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = telemetry.WithOperation(ctx, "delete_observations")

	var args struct {
		Deletions []types.ObservationDeletion `json:"deletions"`
	}
	if err := request.BindArguments(&args); err != nil {
		return errorResult(err), nil
	}

	if err := r.graph.DeleteObservations(ctx, args.Deletions); err != nil {
		r.logger.ErrorContext(ctx, "delete_observations failed", "error", err)
		return errorResult(err), nil
	}
	return mcp.NewToolResultText("Observations deleted successfully"), nil
}
