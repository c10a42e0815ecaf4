// Package types defines the core data types for the memento knowledge graph.
//
// This package contains the fundamental types exchanged across memento:
//   - Entity: A named node with a free-form type and ordered observations
//   - Relation: A directed, typed edge between two entities
//   - KnowledgeGraph: A snapshot of entities and relations returned by reads
//   - ObservationAddition/ObservationResult/ObservationDeletion: Per-entity
//     observation change requests and their outcomes
//
// # Relation type normalization
//
// Relation types are free-form phrases ("works at") but are stored as
// relationship type identifiers, which cannot contain spaces. Writers call
// NormalizeRelationType before persisting and readers call
// DenormalizeRelationType when assembling snapshots, so callers always see
// the lowercase spaced form:
//
//	types.NormalizeRelationType("works at")   // "WORKS_AT"
//	types.DenormalizeRelationType("WORKS_AT") // "works at"
//
// All types are plain data carriers with JSON struct tags; merge and
// uniqueness policy lives in the manager, not here.
package types
