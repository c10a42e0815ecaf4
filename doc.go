// Package memento provides a persistent knowledge graph memory backed
// by Neo4j.
//
// Memento stores a labeled property graph of uniquely named entities
// and directed, typed relations between them. Each entity carries a
// type and an append-only list of observation strings. The graph is
// exposed programmatically through the Memento interface and to MCP
// clients through the memento command.
//
// # Basic Usage
//
// Create a Manager on a Neo4j store:
//
//	st, err := store.NewNeo4jStore("bolt://localhost:7687", "neo4j", "password", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	graph := memento.New(ctx, st)
//	defer graph.Close(ctx)
//
// # Entities and Relations
//
// Entities are created by name; names are unique across the graph:
//
//	created, err := graph.CreateEntities(ctx, []types.Entity{
//		{Name: "Alice", EntityType: "person", Observations: []string{"speaks French"}},
//		{Name: "Acme", EntityType: "company"},
//	})
//
// Relations connect entities in active voice:
//
//	relations, err := graph.CreateRelations(ctx, []types.Relation{
//		{From: "Alice", To: "Acme", RelationType: "works at"},
//	})
//
// Creates are idempotent. An entity whose name exists, or a relation
// already present between its endpoints in either direction, is skipped
// and omitted from the returned slice.
//
// # Observations
//
// Observations are appended per entity and deduplicated against the
// stored contents:
//
//	results, err := graph.AddObservations(ctx, []types.ObservationAddition{
//		{EntityName: "Alice", Contents: []string{"enjoys hiking"}},
//	})
//
// # Reading the Graph
//
// The graph is read whole, by search, or by name:
//
//	graph, err := graph.ReadGraph(ctx)
//	graph, err := graph.SearchNodes(ctx, "hiking")
//	graph, err := graph.OpenNodes(ctx, []string{"Alice", "Acme"})
//
// Search matches entity names, types, and observation contents
// case-insensitively, and includes the relations whose endpoints both
// matched.
//
// # Error Handling
//
// The package provides sentinel errors for common scenarios:
//
//   - ErrEntityNotFound: An observation addition targeted a missing entity
//   - ErrConstraintViolation: A write raced another on a unique entity name
//   - ErrStoreUnavailable: The database could not be reached
//
// # Architecture
//
// The module follows a layered architecture:
//
//   - pkg/store: Cypher execution against Neo4j, with optional circuit breaking
//   - pkg/types: Core type definitions and relation type normalization
//   - pkg/tools: MCP tool definitions and handlers
//   - pkg/server: REST API over the same graph operations
//
// This design keeps graph semantics in one place; the MCP and HTTP
// surfaces are thin adapters over the Memento interface.
package memento
