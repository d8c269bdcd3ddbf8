// Package graph persists the Entity/Observation/Relation knowledge graph in
// SQLite through bun, the same storage stack the teacher uses for its
// content tables.
package graph

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// entityModel is the durable row for one Markdown-file-backed node.
type entityModel struct {
	bun.BaseModel `bun:"table:entities,alias:e"`

	ID             uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Title          string         `bun:"title,notnull" json:"title"`
	EntityType     string         `bun:"entity_type,notnull" json:"entity_type"`
	Permalink      string         `bun:"permalink,notnull,unique" json:"permalink"`
	FilePath       string         `bun:"file_path,notnull,unique" json:"file_path"`
	RawFrontMatter map[string]any `bun:"raw_front_matter,type:jsonb" json:"raw_front_matter,omitempty"`
	Content        string         `bun:"content,notnull" json:"content"`
	Checksum       string         `bun:"checksum,notnull" json:"checksum"`
	CreatedAt      time.Time      `bun:"created_at,nullzero,notnull" json:"created_at"`
	ModifiedAt     time.Time      `bun:"modified_at,nullzero,notnull" json:"modified_at"`

	Observations []*observationModel `bun:"rel:has-many,join:id=entity_id" json:"observations,omitempty"`
	Outgoing     []*relationModel    `bun:"rel:has-many,join:id=from_id" json:"outgoing,omitempty"`
}

// observationModel is a single timestamped fact owned by an entity.
type observationModel struct {
	bun.BaseModel `bun:"table:observations,alias:o"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	EntityID uuid.UUID `bun:"entity_id,notnull,type:uuid" json:"entity_id"`
	Category string    `bun:"category,notnull" json:"category"`
	Content  string    `bun:"content,notnull" json:"content"`
	Tags     []string  `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Context  string    `bun:"context" json:"context,omitempty"`

	Entity *entityModel `bun:"rel:belongs-to,join:entity_id=id" json:"-"`
}

// relationModel is a directed, typed edge between two entities. ToID is
// nullable: a relation whose target hasn't been resolved yet is still
// persisted, with ToID nil and ToName holding the raw `[[Target]]` text.
type relationModel struct {
	bun.BaseModel `bun:"table:relations,alias:r"`

	ID           uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	FromID       uuid.UUID  `bun:"from_id,notnull,type:uuid" json:"from_id"`
	ToID         *uuid.UUID `bun:"to_id,type:uuid" json:"to_id,omitempty"`
	ToName       string     `bun:"to_name,notnull" json:"to_name"`
	RelationType string     `bun:"relation_type,notnull" json:"relation_type"`
	Context      string     `bun:"context" json:"context,omitempty"`

	From *entityModel `bun:"rel:belongs-to,join:from_id=id" json:"-"`
	To   *entityModel `bun:"rel:belongs-to,join:to_id=id" json:"-"`
}
