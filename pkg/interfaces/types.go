package interfaces

import (
	"time"

	"github.com/google/uuid"
)

// EntityType is a free-form classification string ("note", "project",
// "person", ...). The system does not constrain the set of valid values.
type EntityType = string

// Entity is a single Markdown-file-backed node in the knowledge graph.
type Entity struct {
	ID         uuid.UUID
	Title      string
	EntityType EntityType
	Permalink  string
	FilePath   string
	// RawFrontMatter carries the frontmatter keys as parsed, recognised ones
	// included, preserved for round-tripping.
	RawFrontMatter map[string]any
	Content        string
	Checksum       string
	Created        time.Time
	Modified       time.Time
}

// ObservationCategory groups an observation under a semantic heading
// ("fact", "decision", "technique", ...). Like EntityType, values are
// free-form.
type ObservationCategory = string

// Observation is a single fact recorded against an entity,
// parsed from a `- [category] content #tag1 #tag2 (context)` list item.
type Observation struct {
	ID       uuid.UUID
	EntityID uuid.UUID
	Category ObservationCategory
	Content  string
	Tags     []string
	// Context is the optional parenthesised trailing annotation.
	Context string
}

// RelationType is a free-form predicate ("implements", "depends_on", ...).
type RelationType = string

// Relation is a directed, typed edge between two entities, parsed from a
// `- relation_type [[Target]]` list item. ToID is nil until the link
// resolver locates the target entity; ToName always holds the raw link text.
type Relation struct {
	ID           uuid.UUID
	FromID       uuid.UUID
	ToID         *uuid.UUID
	ToName       string
	RelationType RelationType
	Context      string
}

// IsResolved reports whether the relation's target has been matched to an
// existing entity.
func (r Relation) IsResolved() bool {
	return r.ToID != nil
}
