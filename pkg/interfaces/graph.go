package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// GraphStore owns the durable Entity/Observation/Relation graph. All writes
// run inside a single transaction per call so partial failures never leave
// an entity with a half-replaced observation or relation set.
type GraphStore interface {
	// UpsertEntity inserts a new entity or replaces an existing one matched
	// by permalink, returning the persisted record with its ID populated.
	UpsertEntity(ctx context.Context, e Entity) (Entity, error)
	// RelocateEntity updates an existing entity's file path and permalink in
	// place, identified by ID rather than by permalink, for the sync
	// engine's move handling (content and checksum are left untouched).
	RelocateEntity(ctx context.Context, id uuid.UUID, filePath, permalink string) (Entity, error)
	GetEntity(ctx context.Context, id uuid.UUID) (Entity, error)
	GetEntityByPermalink(ctx context.Context, permalink string) (Entity, error)
	GetEntityByFilePath(ctx context.Context, filePath string) (Entity, error)
	ListEntities(ctx context.Context) ([]Entity, error)
	// DeleteEntity removes an entity and cascades to its observations and
	// relations (both outgoing and incoming).
	DeleteEntity(ctx context.Context, id uuid.UUID) error

	// ReplaceObservations atomically replaces every observation owned by
	// entityID with the supplied set.
	ReplaceObservations(ctx context.Context, entityID uuid.UUID, observations []Observation) ([]Observation, error)
	ListObservations(ctx context.Context, entityID uuid.UUID) ([]Observation, error)

	// ReplaceOutgoingRelations atomically replaces every relation whose
	// FromID is entityID with the supplied set. Relations whose target has
	// not yet been resolved are persisted with a nil ToID.
	ReplaceOutgoingRelations(ctx context.Context, entityID uuid.UUID, relations []Relation) ([]Relation, error)
	ListOutgoingRelations(ctx context.Context, entityID uuid.UUID) ([]Relation, error)
	ListIncomingRelations(ctx context.Context, entityID uuid.UUID) ([]Relation, error)

	// FindUnresolvedRelations returns every relation with a nil ToID, for
	// the sync engine's relation-backfill phase.
	FindUnresolvedRelations(ctx context.Context) ([]Relation, error)
	// ResolveRelation sets a previously-unresolved relation's target.
	ResolveRelation(ctx context.Context, relationID uuid.UUID, targetID uuid.UUID) error
}
