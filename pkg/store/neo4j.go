package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// readFetchSize is the record batch size requested for read sessions.
// Snapshot reads pull every entity in a single statement, so reads want
// large batches from the server.
const readFetchSize = 10000

// Neo4jStore implements Store for Neo4j databases. Every call opens its
// own session against the configured database and closes it on return.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore creates a new Neo4j-backed store. The database name
// defaults to "neo4j" when empty.
func NewNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jStore{
		client:   client,
		database: database,
	}, nil
}

// ExecuteRead runs a read statement in its own session and managed
// transaction and flattens the records into rows.
func (n *Neo4jStore) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database, FetchSize: readFetchSize})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, classifyError(err)
	}

	records, ok := result.([]*db.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: got %T, expected []*db.Record", result)
	}
	return recordsToRows(records), nil
}

// ExecuteWrite runs a write statement in its own session and managed
// transaction.
func (n *Neo4jStore) ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, classifyError(err)
	}

	records, ok := result.([]*db.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: got %T, expected []*db.Record", result)
	}
	return recordsToRows(records), nil
}

// VerifyConnectivity checks that the Neo4j server is reachable.
func (n *Neo4jStore) VerifyConnectivity(ctx context.Context) error {
	if err := n.client.VerifyConnectivity(ctx); err != nil {
		return classifyError(err)
	}
	return nil
}

// Close shuts down the driver and its connection pool.
func (n *Neo4jStore) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// recordsToRows flattens driver records into maps keyed by RETURN alias.
func recordsToRows(records []*db.Record) []map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = record.Values[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// classifyError maps driver failures onto the store sentinels. Constraint
// rejections carry the Neo.ClientError.Schema.ConstraintValidationFailed
// code; everything else is treated as the store being unavailable.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "ConstraintValidationFailed") || strings.Contains(err.Error(), "already exists with") {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
