// Package store provides graph database access for memento.
//
// This package defines the Store interface, a thin Cypher execution
// surface over which the knowledge-graph manager runs its statements.
// Query text stays with the manager; the store owns sessions, managed
// transactions, and flattening driver records into plain rows.
//
// # Implementations
//
//   - Neo4jStore: one session per call against a configurable database
//     name, with errors classified into the package sentinels
//   - BreakerStore: a circuit-breaking decorator that fails fast as
//     ErrUnavailable once the database keeps refusing work
//
// # Usage
//
//	st, err := store.NewNeo4jStore(uri, username, password, database)
//	if err != nil {
//	    return err
//	}
//	defer st.Close(ctx)
//
//	rows, err := st.ExecuteRead(ctx, "MATCH (e:Entity) RETURN e.name as name", nil)
//
// # Thread Safety
//
// All implementations are safe for concurrent use from multiple
// goroutines. Connections are pooled by the underlying driver.
package store
