package memento

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/soundprediction/memento/pkg/store"
	"github.com/soundprediction/memento/pkg/types"
)

// Entity properties are stored snake_case (entity_type, observations) and
// renamed on read to the camelCase the API exposes.
const (
	constraintQuery = "CREATE CONSTRAINT entity_name_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.name IS UNIQUE"

	entityExistsQuery = "MATCH (e:Entity {name: $name}) RETURN e"

	entityCreateQuery = `
		CREATE (e:Entity {
			name: $name,
			entity_type: $entity_type,
			observations: $observations
		})
	`

	relationExistsQuery = `
		MATCH (from:Entity {name: $from_name})-[r]-(to:Entity {name: $to_name})
		WHERE type(r) = $relation_type
		RETURN r
	`

	// Cypher cannot take a relationship type as a parameter, so create
	// and delete interpolate the normalized type into the statement.
	relationCreateQueryTemplate = `
		MATCH (from:Entity {name: $from_name})
		MATCH (to:Entity {name: $to_name})
		CREATE (from)-[r:%s]->(to)
		RETURN r
	`

	relationDeleteQueryTemplate = `
		MATCH (from:Entity {name: $from_name})-[r:%s]->(to:Entity {name: $to_name})
		DELETE r
	`

	observationsQuery = "MATCH (e:Entity {name: $entity_name}) RETURN e.observations as observations"

	observationsSetQuery = "MATCH (e:Entity {name: $entity_name}) SET e.observations = $observations"

	entitiesDeleteQuery = "MATCH (e:Entity) WHERE e.name IN $entity_names DETACH DELETE e"

	allEntitiesQuery = "MATCH (e:Entity) RETURN e.name as name, e.entity_type as entity_type, e.observations as observations"

	allRelationsQuery = `
		MATCH (from:Entity)-[r]->(to:Entity)
		RETURN from.name as from_name, to.name as to_name, type(r) as relation_type
	`

	searchEntitiesQuery = `
		MATCH (e:Entity)
		WHERE toLower(e.name) CONTAINS toLower($search_query)
		   OR toLower(e.entity_type) CONTAINS toLower($search_query)
		   OR any(obs IN e.observations WHERE toLower(obs) CONTAINS toLower($search_query))
		RETURN e.name as name, e.entity_type as entity_type, e.observations as observations
	`

	openEntitiesQuery = "MATCH (e:Entity) WHERE e.name IN $entity_names RETURN e.name as name, e.entity_type as entity_type, e.observations as observations"

	relationsAmongQuery = `
		MATCH (from:Entity)-[r]->(to:Entity)
		WHERE from.name IN $entity_names AND to.name IN $entity_names
		RETURN from.name as from_name, to.name as to_name, type(r) as relation_type
	`
)

// CreateEntities creates the entities whose names are not yet taken and
// returns them in input order.
func (m *Manager) CreateEntities(ctx context.Context, entities []types.Entity) ([]types.Entity, error) {
	created := []types.Entity{}

	for _, entity := range entities {
		rows, err := m.store.ExecuteRead(ctx, entityExistsQuery, map[string]any{
			"name": entity.Name,
		})
		if err != nil {
			return created, fmt.Errorf("failed to check entity %s: %w", entity.Name, err)
		}
		if len(rows) > 0 {
			continue
		}

		if entity.Observations == nil {
			entity.Observations = []string{}
		}
		if _, err := m.store.ExecuteWrite(ctx, entityCreateQuery, map[string]any{
			"name":         entity.Name,
			"entity_type":  entity.EntityType,
			"observations": entity.Observations,
		}); err != nil {
			return created, fmt.Errorf("failed to create entity %s: %w", entity.Name, err)
		}
		created = append(created, entity)
	}

	m.logger.Debug("created entities", "requested", len(entities), "created", len(created))
	return created, nil
}

// CreateRelations creates the relations that do not already exist and
// returns them in input order.
func (m *Manager) CreateRelations(ctx context.Context, relations []types.Relation) ([]types.Relation, error) {
	created := []types.Relation{}

	for _, relation := range relations {
		relationType := types.NormalizeRelationType(relation.RelationType)

		rows, err := m.store.ExecuteRead(ctx, relationExistsQuery, map[string]any{
			"from_name":     relation.From,
			"to_name":       relation.To,
			"relation_type": relationType,
		})
		if err != nil {
			return created, fmt.Errorf("failed to check relation %s-%s: %w", relation.From, relation.To, err)
		}
		if len(rows) > 0 {
			continue
		}

		query := fmt.Sprintf(relationCreateQueryTemplate, relationType)
		rows, err = m.store.ExecuteWrite(ctx, query, map[string]any{
			"from_name": relation.From,
			"to_name":   relation.To,
		})
		if err != nil {
			return created, fmt.Errorf("failed to create relation %s-%s: %w", relation.From, relation.To, err)
		}
		// The create pattern matches nothing when an endpoint is
		// missing; nothing was created, so nothing is reported.
		if len(rows) > 0 {
			created = append(created, relation)
		}
	}

	m.logger.Debug("created relations", "requested", len(relations), "created", len(created))
	return created, nil
}

// AddObservations appends new observation contents to existing entities
// and reports what was actually added per entry. Entries naming missing
// entities fail individually without stopping the rest of the batch; the
// returned error aggregates those failures and matches ErrEntityNotFound.
func (m *Manager) AddObservations(ctx context.Context, additions []types.ObservationAddition) ([]types.ObservationResult, error) {
	results := []types.ObservationResult{}
	var failures []error

	for _, addition := range additions {
		rows, err := m.store.ExecuteRead(ctx, observationsQuery, map[string]any{
			"entity_name": addition.EntityName,
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("failed to read observations for %s: %w", addition.EntityName, err))
			return results, errors.Join(failures...)
		}
		if len(rows) == 0 {
			failures = append(failures, &EntityNotFoundError{Name: addition.EntityName})
			continue
		}

		current := store.StringSliceValue(rows[0], "observations")
		added := []string{}
		for _, content := range addition.Contents {
			if !slices.Contains(current, content) && !slices.Contains(added, content) {
				added = append(added, content)
			}
		}

		if len(added) > 0 {
			if _, err := m.store.ExecuteWrite(ctx, observationsSetQuery, map[string]any{
				"entity_name":  addition.EntityName,
				"observations": append(current, added...),
			}); err != nil {
				failures = append(failures, fmt.Errorf("failed to update observations for %s: %w", addition.EntityName, err))
				return results, errors.Join(failures...)
			}
		}

		results = append(results, types.ObservationResult{
			EntityName:        addition.EntityName,
			AddedObservations: added,
		})
	}

	m.logger.Debug("added observations", "entries", len(additions), "failed", len(failures))
	return results, errors.Join(failures...)
}

// DeleteEntities removes the named entities and, with them, every
// relation they participate in.
func (m *Manager) DeleteEntities(ctx context.Context, names []string) error {
	if _, err := m.store.ExecuteWrite(ctx, entitiesDeleteQuery, map[string]any{
		"entity_names": names,
	}); err != nil {
		return fmt.Errorf("failed to delete entities: %w", err)
	}
	return nil
}

// DeleteObservations removes the listed observation strings from each
// named entity. Entries naming missing entities are skipped.
func (m *Manager) DeleteObservations(ctx context.Context, deletions []types.ObservationDeletion) error {
	for _, deletion := range deletions {
		rows, err := m.store.ExecuteRead(ctx, observationsQuery, map[string]any{
			"entity_name": deletion.EntityName,
		})
		if err != nil {
			return fmt.Errorf("failed to read observations for %s: %w", deletion.EntityName, err)
		}
		if len(rows) == 0 {
			continue
		}

		current := store.StringSliceValue(rows[0], "observations")
		updated := []string{}
		for _, observation := range current {
			if !slices.Contains(deletion.Observations, observation) {
				updated = append(updated, observation)
			}
		}

		if _, err := m.store.ExecuteWrite(ctx, observationsSetQuery, map[string]any{
			"entity_name":  deletion.EntityName,
			"observations": updated,
		}); err != nil {
			return fmt.Errorf("failed to update observations for %s: %w", deletion.EntityName, err)
		}
	}
	return nil
}

// DeleteRelations removes each given relation if it exists.
func (m *Manager) DeleteRelations(ctx context.Context, relations []types.Relation) error {
	for _, relation := range relations {
		query := fmt.Sprintf(relationDeleteQueryTemplate, types.NormalizeRelationType(relation.RelationType))
		if _, err := m.store.ExecuteWrite(ctx, query, map[string]any{
			"from_name": relation.From,
			"to_name":   relation.To,
		}); err != nil {
			return fmt.Errorf("failed to delete relation %s-%s: %w", relation.From, relation.To, err)
		}
	}
	return nil
}

// ReadGraph returns every entity and relation in the graph.
func (m *Manager) ReadGraph(ctx context.Context) (types.KnowledgeGraph, error) {
	graph := emptyGraph()

	rows, err := m.store.ExecuteRead(ctx, allEntitiesQuery, nil)
	if err != nil {
		return graph, fmt.Errorf("failed to read entities: %w", err)
	}
	for _, row := range rows {
		graph.Entities = append(graph.Entities, entityFromRow(row))
	}

	rows, err = m.store.ExecuteRead(ctx, allRelationsQuery, nil)
	if err != nil {
		return graph, fmt.Errorf("failed to read relations: %w", err)
	}
	for _, row := range rows {
		graph.Relations = append(graph.Relations, relationFromRow(row))
	}

	return graph, nil
}

// SearchNodes returns the entities matching the query string and the
// relations connecting two matched entities.
func (m *Manager) SearchNodes(ctx context.Context, query string) (types.KnowledgeGraph, error) {
	graph := emptyGraph()

	rows, err := m.store.ExecuteRead(ctx, searchEntitiesQuery, map[string]any{
		"search_query": query,
	})
	if err != nil {
		return graph, fmt.Errorf("failed to search entities: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		entity := entityFromRow(row)
		graph.Entities = append(graph.Entities, entity)
		names = append(names, entity.Name)
	}
	if len(names) == 0 {
		return graph, nil
	}

	rows, err = m.store.ExecuteRead(ctx, relationsAmongQuery, map[string]any{
		"entity_names": names,
	})
	if err != nil {
		return graph, fmt.Errorf("failed to read relations: %w", err)
	}
	for _, row := range rows {
		graph.Relations = append(graph.Relations, relationFromRow(row))
	}

	return graph, nil
}

// OpenNodes returns the named entities and the relations connecting two
// of them. Names that do not exist are ignored.
func (m *Manager) OpenNodes(ctx context.Context, names []string) (types.KnowledgeGraph, error) {
	graph := emptyGraph()

	rows, err := m.store.ExecuteRead(ctx, openEntitiesQuery, map[string]any{
		"entity_names": names,
	})
	if err != nil {
		return graph, fmt.Errorf("failed to open entities: %w", err)
	}

	found := make([]string, 0, len(rows))
	for _, row := range rows {
		entity := entityFromRow(row)
		graph.Entities = append(graph.Entities, entity)
		found = append(found, entity.Name)
	}
	if len(found) == 0 {
		return graph, nil
	}

	rows, err = m.store.ExecuteRead(ctx, relationsAmongQuery, map[string]any{
		"entity_names": found,
	})
	if err != nil {
		return graph, fmt.Errorf("failed to read relations: %w", err)
	}
	for _, row := range rows {
		graph.Relations = append(graph.Relations, relationFromRow(row))
	}

	return graph, nil
}

// emptyGraph returns a graph whose slices are non-nil so both serialize
// as [] rather than null.
func emptyGraph() types.KnowledgeGraph {
	return types.KnowledgeGraph{
		Entities:  []types.Entity{},
		Relations: []types.Relation{},
	}
}

func entityFromRow(row map[string]any) types.Entity {
	return types.Entity{
		Name:         store.StringValue(row, "name"),
		EntityType:   store.StringValue(row, "entity_type"),
		Observations: store.StringSliceValue(row, "observations"),
	}
}

func relationFromRow(row map[string]any) types.Relation {
	return types.Relation{
		From:         store.StringValue(row, "from_name"),
		To:           store.StringValue(row, "to_name"),
		RelationType: types.DenormalizeRelationType(store.StringValue(row, "relation_type")),
	}
}
