package memento

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/memento/pkg/store"
	"github.com/soundprediction/memento/pkg/types"
)

// Memento is the main interface for a persistent knowledge-graph memory.
// Entities are uniquely named nodes carrying a type and a list of
// observation strings; relations are typed, directed edges between them.
//
// Write operations are idempotent at the item level. Creating an entity
// or relation that already exists is a silent skip, and deleting one
// that does not exist is a silent no-op. The one asymmetry is
// AddObservations, which fails with ErrEntityNotFound when the target
// entity is missing.
type Memento interface {
	// CreateEntities creates the given entities, skipping any whose name
	// already exists. It returns the entities actually created, in input
	// order. Existing entities are never merged or updated.
	CreateEntities(ctx context.Context, entities []types.Entity) ([]types.Entity, error)

	// CreateRelations creates the given relations, skipping any that
	// already exist between their endpoints in either direction. It
	// returns the relations actually created, in input order. A relation
	// whose endpoints do not both exist is skipped silently.
	CreateRelations(ctx context.Context, relations []types.Relation) ([]types.Relation, error)

	// AddObservations appends new observation strings to existing
	// entities, skipping contents already present. It returns, per
	// addition, the observations actually appended. A missing entity
	// fails the call with an EntityNotFoundError.
	AddObservations(ctx context.Context, additions []types.ObservationAddition) ([]types.ObservationResult, error)

	// DeleteEntities removes the named entities together with every
	// relation attached to them. Missing names are ignored.
	DeleteEntities(ctx context.Context, names []string) error

	// DeleteObservations removes specific observation strings from
	// entities. Missing entities and missing observations are ignored.
	DeleteObservations(ctx context.Context, deletions []types.ObservationDeletion) error

	// DeleteRelations removes the given relations. Missing relations are
	// ignored.
	DeleteRelations(ctx context.Context, relations []types.Relation) error

	// ReadGraph returns every entity and relation in the graph.
	ReadGraph(ctx context.Context) (types.KnowledgeGraph, error)

	// SearchNodes returns the entities whose name, type, or observations
	// contain the query, case-insensitively, plus the relations whose
	// endpoints both matched.
	SearchNodes(ctx context.Context, query string) (types.KnowledgeGraph, error)

	// OpenNodes returns the named entities plus the relations whose
	// endpoints are both in the result set. Missing names are ignored.
	OpenNodes(ctx context.Context, names []string) (types.KnowledgeGraph, error)

	// Close releases the underlying store and its connections.
	Close(ctx context.Context) error
}

// Manager implements Memento on top of a Cypher store. All graph policy
// lives here; the store only executes statements. Deduplication checks
// and their subsequent writes are not transactional, so concurrent
// writers may race. The uniqueness constraint on entity names backstops
// entity creation; relation and observation writes have no such guard.
type Manager struct {
	store  store.Store
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for operational messages. The default
// is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Manager on the given store and attempts to install the
// uniqueness constraint on entity names. Constraint setup failures are
// logged and swallowed: the constraint usually exists already, and a
// connection without schema privileges can still operate against a
// database where it was provisioned out of band.
func New(ctx context.Context, st store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if _, err := m.store.ExecuteWrite(ctx, constraintQuery, nil); err != nil {
		m.logger.Debug("entity name constraint setup skipped", "error", err)
	}

	return m
}

// Close releases the underlying store and its connections.
func (m *Manager) Close(ctx context.Context) error {
	return m.store.Close(ctx)
}

// EntityNotFoundError reports an operation against an entity name that
// is not in the graph. It matches ErrEntityNotFound under errors.Is.
type EntityNotFoundError struct {
	Name string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("Entity with name %s not found", e.Name)
}

func (e *EntityNotFoundError) Is(target error) bool {
	return target == ErrEntityNotFound
}

var (
	// ErrEntityNotFound is returned when an operation requires an entity
	// that does not exist. Only AddObservations reports it; the delete
	// operations treat missing entities as no-ops.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrConstraintViolation is returned when the store rejects a write
	// that would duplicate a unique entity name.
	ErrConstraintViolation = store.ErrConstraintViolation

	// ErrStoreUnavailable is returned when the store cannot be reached or
	// a statement fails for infrastructure reasons.
	ErrStoreUnavailable = store.ErrUnavailable
)
