package store

import (
	"context"
	"errors"
)

// Sentinel errors adapters classify driver failures into. Callers branch
// with errors.Is and never depend on driver error types directly.
var (
	// ErrConstraintViolation reports a write rejected by a database
	// constraint, typically two concurrent creates racing on a unique
	// entity name.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrUnavailable reports that the database could not be reached or a
	// statement could not be executed for infrastructure reasons.
	ErrUnavailable = errors.New("store unavailable")
)

// Store executes Cypher statements against a graph database. Callers own
// the statements and their parameters; implementations own sessions,
// transactions, and the flattening of driver records into plain rows.
type Store interface {
	// ExecuteRead runs a read statement and returns one row per record,
	// keyed by the statement's RETURN aliases.
	ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	// ExecuteWrite runs a write statement. Rows are returned for
	// statements that RETURN values and are empty otherwise.
	ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	// VerifyConnectivity checks that the database is reachable with the
	// configured credentials.
	VerifyConnectivity(ctx context.Context) error

	// Close releases the underlying driver and its connection pool.
	Close(ctx context.Context) error
}
