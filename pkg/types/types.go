package types

import "strings"

// Entity is a named node in the knowledge graph. Name is the primary key;
// two entities never share a name. Observations are discrete facts attached
// to the entity, kept in insertion order with duplicates rejected on write.
type Entity struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

// Relation is a directed, typed edge between two entities identified by name.
// RelationType is stored normalized (see NormalizeRelationType) and reported
// denormalized, so "works at" and "WORKS_AT" describe the same edge.
type Relation struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// KnowledgeGraph is a point-in-time snapshot of entities and relations.
// It is assembled fresh on every read; nothing is cached between calls.
type KnowledgeGraph struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// ObservationAddition requests new observations for one entity.
type ObservationAddition struct {
	EntityName string   `json:"entityName"`
	Contents   []string `json:"contents"`
}

// ObservationResult reports which of the requested observations were
// actually appended to an entity, in request order.
type ObservationResult struct {
	EntityName        string   `json:"entityName"`
	AddedObservations []string `json:"addedObservations"`
}

// ObservationDeletion requests removal of specific observations from one
// entity. Strings must match stored observations exactly.
type ObservationDeletion struct {
	EntityName   string   `json:"entityName"`
	Observations []string `json:"observations"`
}

// NormalizeRelationType converts a relation type to its storage form:
// spaces become underscores and the result is uppercased, so "works at"
// becomes "WORKS_AT". Relationship type identifiers in the store cannot
// contain spaces.
func NormalizeRelationType(relationType string) string {
	return strings.ToUpper(strings.ReplaceAll(relationType, " ", "_"))
}

// DenormalizeRelationType converts a stored relation type back to its
// reported form: underscores become spaces and the result is lowercased,
// so "WORKS_AT" becomes "works at". Inverse of NormalizeRelationType for
// types built from letters and spaces; other punctuation does not
// round-trip.
func DenormalizeRelationType(relationType string) string {
	return strings.ToLower(strings.ReplaceAll(relationType, "_", " "))
}
