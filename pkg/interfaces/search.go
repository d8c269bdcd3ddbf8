package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchResultKind tags which table a search hit came from, since the index
// is a union over entities, observations, and relations.
type SearchResultKind string

const (
	SearchResultEntity      SearchResultKind = "entity"
	SearchResultObservation SearchResultKind = "observation"
	SearchResultRelation    SearchResultKind = "relation"
)

// SearchResult is one ranked hit from the lexical search index.
type SearchResult struct {
	Kind        SearchResultKind
	EntityID    uuid.UUID
	Permalink   string
	Title       string
	Snippet     string
	Score       float64
	CreatedAt   time.Time
}

// SearchQuery describes a lexical or pattern search against the index.
type SearchQuery struct {
	// Text is matched with FTS5 full-text semantics; empty means "match
	// everything" (used together with PermalinkGlob-only filtering).
	Text string
	// PermalinkGlob filters by permalink using `*`/`**` glob semantics;
	// empty means no filtering by permalink.
	PermalinkGlob string
	// Types restricts results to the given row kinds (entity/observation/
	// relation); empty means no restriction.
	Types []SearchResultKind
	// After filters out rows created strictly before this timestamp; the
	// zero value means no filtering.
	After time.Time
	// EntityID restricts results to rows belonging to one entity (the
	// entity itself plus its observations and incident relations).
	EntityID uuid.UUID
	Limit    int
	Offset   int
}

// SearchIndex is the lexical full-text index layered over the graph store.
// It is a pure projection: every write here is driven by a corresponding
// graph store write, never the other way around.
type SearchIndex interface {
	IndexEntity(ctx context.Context, e Entity) error
	IndexObservation(ctx context.Context, entityPermalink string, o Observation) error
	IndexRelation(ctx context.Context, fromPermalink string, r Relation) error

	DeleteByEntityID(ctx context.Context, entityID uuid.UUID) error
	DeleteByPermalink(ctx context.Context, permalink string) error

	Search(ctx context.Context, q SearchQuery) ([]SearchResult, error)

	// Clear removes every row from the index, used by the sync engine's
	// Rebuild operation to repopulate from the graph store's current state.
	Clear(ctx context.Context) error
}
