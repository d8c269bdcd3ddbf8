// Package search maintains the SQLite FTS5-backed lexical index described
// by spec.md §4.3: one row per searchable item (entity, observation, or
// relation), queried by full text, exact permalink, or glob pattern.
package search

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// createVirtualTable is raw DDL because bun's struct tags can't express an
// FTS5 virtual table, the same "ExecContext for what tags can't say" pattern
// the teacher uses for its own non-model indexes.
const createVirtualTable = `
CREATE VIRTUAL TABLE IF NOT EXISTS search_index USING fts5(
	type UNINDEXED,
	id UNINDEXED,
	title,
	content,
	permalink UNINDEXED,
	file_path UNINDEXED,
	from_id UNINDEXED,
	to_id UNINDEXED,
	relation_type UNINDEXED,
	category UNINDEXED,
	entity_id UNINDEXED,
	created_at UNINDEXED,
	metadata UNINDEXED
)`

// Migrate creates the search_index virtual table if it does not exist.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, createVirtualTable); err != nil {
		return fmt.Errorf("create search_index: %w", err)
	}
	return nil
}
