package graph

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Migrate creates the entities/observations/relations tables and their
// supporting indexes if they do not already exist, following the same
// db.NewCreateTable().Model(...).IfNotExists() plus raw ExecContext pattern
// the teacher uses to register its content tables in tests.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	models := []any{
		(*entityModel)(nil),
		(*observationModel)(nil),
		(*relationModel)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}

	statements := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_entities_permalink ON entities(permalink)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_entities_file_path ON entities(file_path)",
		"CREATE INDEX IF NOT EXISTS idx_observations_entity_id ON observations(entity_id)",
		"CREATE INDEX IF NOT EXISTS idx_relations_from_id ON relations(from_id)",
		"CREATE INDEX IF NOT EXISTS idx_relations_to_id ON relations(to_id)",
		"CREATE INDEX IF NOT EXISTS idx_relations_unresolved ON relations(to_id) WHERE to_id IS NULL",
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}

	return nil
}
