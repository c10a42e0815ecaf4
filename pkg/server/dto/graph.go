package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/memento/pkg/types"
)

// CreateEntitiesRequest carries entities to store in the graph.
type CreateEntitiesRequest struct {
	Entities []types.Entity `json:"entities" binding:"required"`
}

// Validate performs validation on CreateEntitiesRequest
func (r *CreateEntitiesRequest) Validate() error {
	if len(r.Entities) == 0 {
		return errors.New("entities cannot be empty")
	}
	for _, entity := range r.Entities {
		if strings.TrimSpace(entity.Name) == "" {
			return errors.New("entity name cannot be empty")
		}
		if strings.TrimSpace(entity.EntityType) == "" {
			return errors.New("entity type cannot be empty")
		}
	}
	return nil
}

// DeleteEntitiesRequest names entities to remove along with their relations.
type DeleteEntitiesRequest struct {
	EntityNames []string `json:"entityNames" binding:"required"`
}

// Validate performs validation on DeleteEntitiesRequest
func (r *DeleteEntitiesRequest) Validate() error {
	if len(r.EntityNames) == 0 {
		return errors.New("entityNames cannot be empty")
	}
	return nil
}

// RelationsRequest carries relations for creation or deletion.
type RelationsRequest struct {
	Relations []types.Relation `json:"relations" binding:"required"`
}

// Validate performs validation on RelationsRequest
func (r *RelationsRequest) Validate() error {
	if len(r.Relations) == 0 {
		return errors.New("relations cannot be empty")
	}
	for _, relation := range r.Relations {
		if strings.TrimSpace(relation.From) == "" {
			return errors.New("relation from cannot be empty")
		}
		if strings.TrimSpace(relation.To) == "" {
			return errors.New("relation to cannot be empty")
		}
		if strings.TrimSpace(relation.RelationType) == "" {
			return errors.New("relation type cannot be empty")
		}
	}
	return nil
}

// AddObservationsRequest carries observation contents keyed by entity.
type AddObservationsRequest struct {
	Observations []types.ObservationAddition `json:"observations" binding:"required"`
}

// Validate performs validation on AddObservationsRequest
func (r *AddObservationsRequest) Validate() error {
	if len(r.Observations) == 0 {
		return errors.New("observations cannot be empty")
	}
	for _, observation := range r.Observations {
		if strings.TrimSpace(observation.EntityName) == "" {
			return errors.New("observation entityName cannot be empty")
		}
	}
	return nil
}

// DeleteObservationsRequest carries observation contents to remove per entity.
type DeleteObservationsRequest struct {
	Deletions []types.ObservationDeletion `json:"deletions" binding:"required"`
}

// Validate performs validation on DeleteObservationsRequest
func (r *DeleteObservationsRequest) Validate() error {
	if len(r.Deletions) == 0 {
		return errors.New("deletions cannot be empty")
	}
	for _, deletion := range r.Deletions {
		if strings.TrimSpace(deletion.EntityName) == "" {
			return errors.New("deletion entityName cannot be empty")
		}
	}
	return nil
}

// SearchRequest carries a text query matched against names, types,
// and observation contents.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// Validate performs validation on SearchRequest
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query cannot be empty")
	}
	return nil
}

// OpenNodesRequest names entities to retrieve by exact name.
type OpenNodesRequest struct {
	Names []string `json:"names" binding:"required"`
}

// Validate performs validation on OpenNodesRequest
func (r *OpenNodesRequest) Validate() error {
	if len(r.Names) == 0 {
		return errors.New("names cannot be empty")
	}
	return nil
}
