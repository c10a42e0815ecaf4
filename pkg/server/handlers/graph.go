package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/memento"
	"github.com/soundprediction/memento/pkg/server/dto"
)

// GraphHandler handles knowledge-graph API requests
type GraphHandler struct {
	graph  memento.Memento
	logger *slog.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(graph memento.Memento, logger *slog.Logger) *GraphHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphHandler{graph: graph, logger: logger}
}

// CreateEntities handles POST /api/v1/entities
func (h *GraphHandler) CreateEntities(c *gin.Context) {
	var req dto.CreateEntitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeBadRequest(c, err)
		return
	}

	created, err := h.graph.CreateEntities(c.Request.Context(), req.Entities)
	if err != nil {
		h.writeOperationError(c, "create_entities", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteEntities handles DELETE /api/v1/entities
func (h *GraphHandler) DeleteEntities(c *gin.Context) {
	var req dto.DeleteEntitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeBadRequest(c, err)
		return
	}

	if err := h.graph.DeleteEntities(c.Request.Context(), req.EntityNames); err != nil {
		h.writeOperationError(c, "delete_entities", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateRelations handles POST /api/v1/relations
func (h *GraphHandler) CreateRelations(c *gin.Context) {
	var req dto.RelationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeBadRequest(c, err)
		return
	}

	created, err := h.graph.CreateRelations(c.Request.Context(), req.Relations)
	if err != nil {
		h.writeOperationError(c, "create_relations", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteRelations handles DELETE /api/v1/relations
func (h *GraphHandler) DeleteRelations(c *gin.Context) {
	var req dto.RelationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeBadRequest(c, err)
		return
	}

	if err := h.graph.DeleteRelations(c.Request.Context(), req.Relations); err != nil {
		h.writeOperationError(c, "delete_relations", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddObservations handles POST /api/v1/observations
func (h *GraphHandler) AddObservations(c *gin.Context) {
	var req dto.AddObservationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeBadRequest(c, err)
		return
	}

	results, err := h.graph.AddObservations(c.Request.Context(), req.Observations)
	if err != nil {
		h.writeOperationError(c, "add_observations", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// DeleteObservations handles DELETE /api/v1/observations
func (h *GraphHandler) DeleteObservations(c *gin.Context) {
	var req dto.DeleteObservationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeBadRequest(c, err)
		return
	}

	if err := h.graph.DeleteObservations(c.Request.Context(), req.Deletions); err != nil {
		h.writeOperationError(c, "delete_observations", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReadGraph handles GET /api/v1/graph
func (h *GraphHandler) ReadGraph(c *gin.Context) {
	graph, err := h.graph.ReadGraph(c.Request.Context())
	if err != nil {
		h.writeOperationError(c, "read_graph", err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

// SearchNodes handles POST /api/v1/search
func (h *GraphHandler) SearchNodes(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeBadRequest(c, err)
		return
	}

	graph, err := h.graph.SearchNodes(c.Request.Context(), req.Query)
	if err != nil {
		h.writeOperationError(c, "search_nodes", err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

// OpenNodes handles POST /api/v1/nodes/open
func (h *GraphHandler) OpenNodes(c *gin.Context) {
	var req dto.OpenNodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeBadRequest(c, err)
		return
	}

	graph, err := h.graph.OpenNodes(c.Request.Context(), req.Names)
	if err != nil {
		h.writeOperationError(c, "open_nodes", err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

func (h *GraphHandler) writeBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
		Code:    http.StatusBadRequest,
	})
}

func (h *GraphHandler) writeOperationError(c *gin.Context, operation string, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request.Context(), "Graph operation failed", "operation", operation, "error", err)
	}
	c.JSON(status, dto.ErrorResponse{
		Error:   errorCode(status),
		Message: err.Error(),
		Code:    status,
	})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, memento.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, memento.ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, memento.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusServiceUnavailable:
		return "store_unavailable"
	default:
		return "internal_error"
	}
}
