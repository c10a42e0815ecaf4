package memento_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/memento"
	"github.com/soundprediction/memento/pkg/store"
	"github.com/soundprediction/memento/pkg/types"
)

var _ memento.Memento = (*memento.Manager)(nil)

// fakeStore is an in-memory Store that interprets the statements the
// Manager issues, so operation semantics can be tested without a
// database. Entities keep insertion order to make read results stable.
type fakeStore struct {
	names     []string
	entities  map[string]*fakeEntity
	relations []fakeRelation

	// hook, when set, runs before every statement and can inject a
	// failure.
	hook   func(query string, params map[string]any) error
	closed bool
}

type fakeEntity struct {
	entityType   string
	observations []string
}

type fakeRelation struct {
	from    string
	to      string
	relType string
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{entities: map[string]*fakeEntity{}}
}

func (s *fakeStore) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return s.run(query, params)
}

func (s *fakeStore) ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return s.run(query, params)
}

func (s *fakeStore) VerifyConnectivity(ctx context.Context) error { return nil }

func (s *fakeStore) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

func (s *fakeStore) run(query string, params map[string]any) ([]map[string]any, error) {
	if s.hook != nil {
		if err := s.hook(query, params); err != nil {
			return nil, err
		}
	}

	trimmed := strings.TrimSpace(query)
	switch {
	case strings.HasPrefix(trimmed, "CREATE CONSTRAINT"):
		return nil, nil

	case strings.HasPrefix(trimmed, "MATCH (e:Entity {name: $name}) RETURN e"):
		if _, ok := s.entities[params["name"].(string)]; ok {
			return []map[string]any{{"e": params["name"]}}, nil
		}
		return nil, nil

	case strings.HasPrefix(trimmed, "CREATE (e:Entity {"):
		name := params["name"].(string)
		s.entities[name] = &fakeEntity{
			entityType:   params["entity_type"].(string),
			observations: slices.Clone(params["observations"].([]string)),
		}
		s.names = append(s.names, name)
		return nil, nil

	case strings.Contains(trimmed, "WHERE type(r) = $relation_type"):
		from := params["from_name"].(string)
		to := params["to_name"].(string)
		relType := params["relation_type"].(string)
		for _, rel := range s.relations {
			forward := rel.from == from && rel.to == to
			reverse := rel.from == to && rel.to == from
			if rel.relType == relType && (forward || reverse) {
				return []map[string]any{{"r": relType}}, nil
			}
		}
		return nil, nil

	case strings.Contains(trimmed, "CREATE (from)-[r:"):
		from := params["from_name"].(string)
		to := params["to_name"].(string)
		if _, ok := s.entities[from]; !ok {
			return nil, nil
		}
		if _, ok := s.entities[to]; !ok {
			return nil, nil
		}
		relType := interpolatedType(trimmed)
		s.relations = append(s.relations, fakeRelation{from: from, to: to, relType: relType})
		return []map[string]any{{"r": relType}}, nil

	case strings.HasPrefix(trimmed, "MATCH (e:Entity {name: $entity_name}) RETURN e.observations"):
		entity, ok := s.entities[params["entity_name"].(string)]
		if !ok {
			return nil, nil
		}
		return []map[string]any{{"observations": slices.Clone(entity.observations)}}, nil

	case strings.Contains(trimmed, "SET e.observations"):
		if entity, ok := s.entities[params["entity_name"].(string)]; ok {
			entity.observations = slices.Clone(params["observations"].([]string))
		}
		return nil, nil

	case strings.Contains(trimmed, "DETACH DELETE e"):
		for _, name := range params["entity_names"].([]string) {
			if _, ok := s.entities[name]; !ok {
				continue
			}
			delete(s.entities, name)
			s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
			s.relations = slices.DeleteFunc(s.relations, func(r fakeRelation) bool {
				return r.from == name || r.to == name
			})
		}
		return nil, nil

	case strings.Contains(trimmed, "DELETE r"):
		from := params["from_name"].(string)
		to := params["to_name"].(string)
		relType := interpolatedType(trimmed)
		s.relations = slices.DeleteFunc(s.relations, func(r fakeRelation) bool {
			return r.from == from && r.to == to && r.relType == relType
		})
		return nil, nil

	case strings.Contains(trimmed, "toLower(e.name)"):
		needle := strings.ToLower(params["search_query"].(string))
		var rows []map[string]any
		for _, name := range s.names {
			if s.matchesSearch(name, needle) {
				rows = append(rows, s.entityRow(name))
			}
		}
		return rows, nil

	case strings.HasPrefix(trimmed, "MATCH (e:Entity) WHERE e.name IN $entity_names"):
		requested := params["entity_names"].([]string)
		var rows []map[string]any
		for _, name := range s.names {
			if slices.Contains(requested, name) {
				rows = append(rows, s.entityRow(name))
			}
		}
		return rows, nil

	case strings.HasPrefix(trimmed, "MATCH (e:Entity) RETURN e.name"):
		var rows []map[string]any
		for _, name := range s.names {
			rows = append(rows, s.entityRow(name))
		}
		return rows, nil

	case strings.Contains(trimmed, "WHERE from.name IN $entity_names"):
		requested := params["entity_names"].([]string)
		var rows []map[string]any
		for _, rel := range s.relations {
			if slices.Contains(requested, rel.from) && slices.Contains(requested, rel.to) {
				rows = append(rows, relationRow(rel))
			}
		}
		return rows, nil

	case strings.HasPrefix(trimmed, "MATCH (from:Entity)-[r]->(to:Entity)"):
		var rows []map[string]any
		for _, rel := range s.relations {
			rows = append(rows, relationRow(rel))
		}
		return rows, nil
	}

	return nil, fmt.Errorf("unhandled query: %s", trimmed)
}

func (s *fakeStore) matchesSearch(name, needle string) bool {
	entity := s.entities[name]
	if strings.Contains(strings.ToLower(name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(entity.entityType), needle) {
		return true
	}
	for _, observation := range entity.observations {
		if strings.Contains(strings.ToLower(observation), needle) {
			return true
		}
	}
	return false
}

func (s *fakeStore) entityRow(name string) map[string]any {
	entity := s.entities[name]
	return map[string]any{
		"name":         name,
		"entity_type":  entity.entityType,
		"observations": slices.Clone(entity.observations),
	}
}

func relationRow(rel fakeRelation) map[string]any {
	return map[string]any{
		"from_name":     rel.from,
		"to_name":       rel.to,
		"relation_type": rel.relType,
	}
}

// interpolatedType extracts the relationship type the Manager wrote into
// a create or delete statement.
func interpolatedType(query string) string {
	start := strings.Index(query, "[r:") + len("[r:")
	end := strings.Index(query[start:], "]")
	return query[start : start+end]
}

func newManager(t *testing.T) (*memento.Manager, *fakeStore) {
	t.Helper()
	st := newFakeStore()
	return memento.New(context.Background(), st), st
}

func seedEntities(t *testing.T, m *memento.Manager, entities ...types.Entity) {
	t.Helper()
	created, err := m.CreateEntities(context.Background(), entities)
	require.NoError(t, err)
	require.Len(t, created, len(entities))
}

func TestNewSwallowsConstraintFailure(t *testing.T) {
	st := newFakeStore()
	st.hook = func(query string, params map[string]any) error {
		if strings.HasPrefix(strings.TrimSpace(query), "CREATE CONSTRAINT") {
			return errors.New("no schema privileges")
		}
		return nil
	}

	m := memento.New(context.Background(), st)
	require.NotNil(t, m)

	seedEntities(t, m, types.Entity{Name: "Alice", EntityType: "person"})
}

func TestCreateEntitiesSkipsExisting(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	created, err := m.CreateEntities(ctx, []types.Entity{
		{Name: "Alice", EntityType: "person", Observations: []string{"knows Go"}},
		{Name: "Acme", EntityType: "company"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	created, err = m.CreateEntities(ctx, []types.Entity{
		{Name: "Alice", EntityType: "impostor", Observations: []string{"other"}},
	})
	require.NoError(t, err)
	assert.Empty(t, created)

	graph, err := m.ReadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, graph.Entities, 2)
	assert.Equal(t, "Alice", graph.Entities[0].Name)
	assert.Equal(t, "person", graph.Entities[0].EntityType)
	assert.Equal(t, []string{"knows Go"}, graph.Entities[0].Observations)
}

func TestCreateEntitiesDefaultsObservations(t *testing.T) {
	m, _ := newManager(t)

	created, err := m.CreateEntities(context.Background(), []types.Entity{
		{Name: "Bob", EntityType: "person"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, []string{}, created[0].Observations)

	graph, err := m.ReadGraph(context.Background())
	require.NoError(t, err)
	require.Len(t, graph.Entities, 1)
	assert.Equal(t, []string{}, graph.Entities[0].Observations)
}

func TestCreateEntitiesPartialFailure(t *testing.T) {
	st := newFakeStore()
	m := memento.New(context.Background(), st)

	creates := 0
	st.hook = func(query string, params map[string]any) error {
		if strings.HasPrefix(strings.TrimSpace(query), "CREATE (e:Entity {") {
			creates++
			if creates > 1 {
				return fmt.Errorf("%w: connection reset", store.ErrUnavailable)
			}
		}
		return nil
	}

	created, err := m.CreateEntities(context.Background(), []types.Entity{
		{Name: "Alice", EntityType: "person"},
		{Name: "Bob", EntityType: "person"},
		{Name: "Carol", EntityType: "person"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, memento.ErrStoreUnavailable)
	require.Len(t, created, 1)
	assert.Equal(t, "Alice", created[0].Name)

	// The first entity was committed before the failure.
	_, aliceExists := st.entities["Alice"]
	assert.True(t, aliceExists)
	_, carolExists := st.entities["Carol"]
	assert.False(t, carolExists)
}

func TestCreateRelations(t *testing.T) {
	m, st := newManager(t)
	ctx := context.Background()
	seedEntities(t, m,
		types.Entity{Name: "Alice", EntityType: "person"},
		types.Entity{Name: "Acme", EntityType: "company"},
	)

	created, err := m.CreateRelations(ctx, []types.Relation{
		{From: "Alice", To: "Acme", RelationType: "works at"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "works at", created[0].RelationType)

	require.Len(t, st.relations, 1)
	assert.Equal(t, "WORKS_AT", st.relations[0].relType)
}

func TestCreateRelationsDirectionAgnosticDuplicate(t *testing.T) {
	m, st := newManager(t)
	ctx := context.Background()
	seedEntities(t, m,
		types.Entity{Name: "Alice", EntityType: "person"},
		types.Entity{Name: "Acme", EntityType: "company"},
	)

	created, err := m.CreateRelations(ctx, []types.Relation{
		{From: "Alice", To: "Acme", RelationType: "works at"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	// Same type with endpoints reversed is the same edge.
	created, err = m.CreateRelations(ctx, []types.Relation{
		{From: "Acme", To: "Alice", RelationType: "works at"},
	})
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Len(t, st.relations, 1)
}

func TestCreateRelationsMissingEndpoint(t *testing.T) {
	m, st := newManager(t)
	ctx := context.Background()
	seedEntities(t, m, types.Entity{Name: "Alice", EntityType: "person"})

	created, err := m.CreateRelations(ctx, []types.Relation{
		{From: "Alice", To: "Nowhere", RelationType: "works at"},
	})
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, st.relations)
}

func TestAddObservations(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	seedEntities(t, m, types.Entity{Name: "Alice", EntityType: "person", Observations: []string{"x"}})

	results, err := m.AddObservations(ctx, []types.ObservationAddition{
		{EntityName: "Alice", Contents: []string{"x", "y"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].EntityName)
	assert.Equal(t, []string{"y"}, results[0].AddedObservations)

	// A second identical call adds nothing but still reports the entry.
	results, err = m.AddObservations(ctx, []types.ObservationAddition{
		{EntityName: "Alice", Contents: []string{"x", "y"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{}, results[0].AddedObservations)

	graph, err := m.ReadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, graph.Entities, 1)
	assert.Equal(t, []string{"x", "y"}, graph.Entities[0].Observations)
}

func TestAddObservationsDeduplicatesContents(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	seedEntities(t, m, types.Entity{Name: "Alice", EntityType: "person"})

	results, err := m.AddObservations(ctx, []types.ObservationAddition{
		{EntityName: "Alice", Contents: []string{"x", "x", "y"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"x", "y"}, results[0].AddedObservations)
}

func TestAddObservationsMissingEntity(t *testing.T) {
	m, st := newManager(t)
	ctx := context.Background()
	seedEntities(t, m, types.Entity{Name: "Alice", EntityType: "person"})

	results, err := m.AddObservations(ctx, []types.ObservationAddition{
		{EntityName: "Ghost", Contents: []string{"boo"}},
		{EntityName: "Alice", Contents: []string{"z"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, memento.ErrEntityNotFound)
	assert.Contains(t, err.Error(), "Entity with name Ghost not found")

	// The failing entry does not stop the rest of the batch.
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].EntityName)
	assert.Equal(t, []string{"z"}, results[0].AddedObservations)
	assert.Equal(t, []string{"z"}, st.entities["Alice"].observations)
}

func TestDeleteEntitiesDetachesRelations(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	seedEntities(t, m,
		types.Entity{Name: "Alice", EntityType: "person"},
		types.Entity{Name: "Bob", EntityType: "person"},
		types.Entity{Name: "Acme", EntityType: "company"},
	)
	_, err := m.CreateRelations(ctx, []types.Relation{
		{From: "Alice", To: "Acme", RelationType: "works at"},
		{From: "Bob", To: "Acme", RelationType: "works at"},
	})
	require.NoError(t, err)

	require.NoError(t, m.DeleteEntities(ctx, []string{"Alice", "Ghost"}))

	graph, err := m.ReadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, graph.Entities, 2)
	assert.Equal(t, "Bob", graph.Entities[0].Name)
	require.Len(t, graph.Relations, 1)
	assert.Equal(t, "Bob", graph.Relations[0].From)
}

func TestDeleteObservations(t *testing.T) {
	m, st := newManager(t)
	ctx := context.Background()
	seedEntities(t, m, types.Entity{Name: "Alice", EntityType: "person", Observations: []string{"x", "y", "z"}})

	err := m.DeleteObservations(ctx, []types.ObservationDeletion{
		{EntityName: "Alice", Observations: []string{"y", "missing"}},
		{EntityName: "Ghost", Observations: []string{"boo"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "z"}, st.entities["Alice"].observations)
}

func TestDeleteRelationsIsDirected(t *testing.T) {
	m, st := newManager(t)
	ctx := context.Background()
	seedEntities(t, m,
		types.Entity{Name: "Alice", EntityType: "person"},
		types.Entity{Name: "Acme", EntityType: "company"},
	)
	_, err := m.CreateRelations(ctx, []types.Relation{
		{From: "Alice", To: "Acme", RelationType: "works at"},
	})
	require.NoError(t, err)

	// Reversed endpoints name a different directed edge.
	require.NoError(t, m.DeleteRelations(ctx, []types.Relation{
		{From: "Acme", To: "Alice", RelationType: "works at"},
	}))
	assert.Len(t, st.relations, 1)

	require.NoError(t, m.DeleteRelations(ctx, []types.Relation{
		{From: "Alice", To: "Acme", RelationType: "works at"},
	}))
	assert.Empty(t, st.relations)
}

func TestReadGraphEmpty(t *testing.T) {
	m, _ := newManager(t)

	graph, err := m.ReadGraph(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, graph.Entities)
	assert.NotNil(t, graph.Relations)
	assert.Empty(t, graph.Entities)
	assert.Empty(t, graph.Relations)
}

func TestRelationTypeRoundTrip(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	seedEntities(t, m,
		types.Entity{Name: "Alice", EntityType: "person"},
		types.Entity{Name: "Acme", EntityType: "company"},
	)
	_, err := m.CreateRelations(ctx, []types.Relation{
		{From: "Alice", To: "Acme", RelationType: "works at"},
	})
	require.NoError(t, err)

	graph, err := m.ReadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, graph.Relations, 1)
	assert.Equal(t, "works at", graph.Relations[0].RelationType)
}

func TestSearchNodes(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	seedEntities(t, m,
		types.Entity{Name: "Alice", EntityType: "person", Observations: []string{"Senior Engineer"}},
		types.Entity{Name: "Acme", EntityType: "company"},
	)
	_, err := m.CreateRelations(ctx, []types.Relation{
		{From: "Alice", To: "Acme", RelationType: "works at"},
	})
	require.NoError(t, err)

	// Case-insensitive observation match; Acme is not in the match set,
	// so the Alice relation is excluded too.
	graph, err := m.SearchNodes(ctx, "engineer")
	require.NoError(t, err)
	require.Len(t, graph.Entities, 1)
	assert.Equal(t, "Alice", graph.Entities[0].Name)
	assert.Empty(t, graph.Relations)

	// Both endpoints matched, so the relation is included.
	graph, err = m.SearchNodes(ctx, "a")
	require.NoError(t, err)
	require.Len(t, graph.Entities, 2)
	require.Len(t, graph.Relations, 1)
	assert.Equal(t, "works at", graph.Relations[0].RelationType)
}

func TestSearchNodesNoMatches(t *testing.T) {
	m, _ := newManager(t)
	seedEntities(t, m, types.Entity{Name: "Alice", EntityType: "person"})

	graph, err := m.SearchNodes(context.Background(), "nothing matches this")
	require.NoError(t, err)
	assert.Empty(t, graph.Entities)
	assert.Empty(t, graph.Relations)
}

func TestOpenNodes(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	seedEntities(t, m,
		types.Entity{Name: "Alice", EntityType: "person"},
		types.Entity{Name: "Bob", EntityType: "person"},
		types.Entity{Name: "Acme", EntityType: "company"},
	)
	_, err := m.CreateRelations(ctx, []types.Relation{
		{From: "Alice", To: "Acme", RelationType: "works at"},
		{From: "Bob", To: "Acme", RelationType: "works at"},
	})
	require.NoError(t, err)

	graph, err := m.OpenNodes(ctx, []string{"Alice", "Acme", "Ghost"})
	require.NoError(t, err)
	require.Len(t, graph.Entities, 2)
	require.Len(t, graph.Relations, 1)
	assert.Equal(t, "Alice", graph.Relations[0].From)
}

func TestManagerClose(t *testing.T) {
	st := newFakeStore()
	m := memento.New(context.Background(), st)

	require.NoError(t, m.Close(context.Background()))
	assert.True(t, st.closed)
}
