package contextbuilder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Seed identifies one row in search_index to start a traversal from, by its
// (type, id) primary key.
type Seed struct {
	Type string
	ID   string
}

// TraversalRow is one row of the recursive traversal, unioning the entity,
// observation, and relation shapes the way search_index itself does.
type TraversalRow struct {
	Type         string
	ID           string
	Title        string
	Permalink    string
	FromID       string
	ToID         string
	RelationType string
	Category     string
	EntityID     string
	Content      string
	Depth        int
	RootID       string
	CreatedAt    string
}

// traverse runs the bounded breadth-first expansion over search_index as a
// single recursive CTE: starting from seeds at depth 0, each step follows
// every relation incident to a depth-N entity and pulls in the relation row,
// the entity on its other end, and that entity's observations, all at depth
// N+1. Within one root, duplicate (type, id) pairs collapse to their
// shortest depth; an item reachable from several seeds is returned once per
// root, ordered by depth so the shortest comes first. This is
// a direct structural port of the original context_service.py's
// find_connected query, expressed with bun's bind parameters instead of
// string-interpolated literals.
func traverse(ctx context.Context, db *bun.DB, seeds []Seed, maxDepth int, since time.Time) ([]TraversalRow, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(seeds))
	args := make([]any, 0, len(seeds)*2+2)
	for i, s := range seeds {
		placeholders[i] = "(?, ?)"
		args = append(args, s.Type, s.ID)
	}
	valuesList := strings.Join(placeholders, ", ")

	baseDateFilter, r1DateFilter, relatedDateFilter := "", "", ""
	var sinceArgs []any
	if !since.IsZero() {
		sinceStr := since.UTC().Format(time.RFC3339)
		baseDateFilter = "AND base.created_at >= ?"
		r1DateFilter = "AND r1.created_at >= ?"
		relatedDateFilter = "AND related.created_at >= ?"
		sinceArgs = []any{sinceStr, sinceStr, sinceStr}
	}

	query := fmt.Sprintf(`
WITH RECURSIVE context_graph AS (
	SELECT
		id, type, title, permalink, from_id, to_id, relation_type,
		category, entity_id, content, 0 as depth, id as root_id, created_at
	FROM search_index base
	WHERE (base.type, base.id) IN (%s)
	%s

	UNION

	SELECT
		related.id, related.type, related.title, related.permalink,
		related.from_id, related.to_id, related.relation_type,
		related.category, related.entity_id, related.content,
		cg.depth + 1, cg.root_id, related.created_at
	FROM context_graph cg
	JOIN search_index r1 ON (
		cg.type = 'entity' AND
		r1.type = 'relation' AND
		(r1.from_id = cg.id OR r1.to_id = cg.id)
		%s
	)
	JOIN search_index related ON (
		related.id = r1.id
		OR (related.type = 'entity' AND (related.id = r1.from_id OR related.id = r1.to_id))
		OR (related.type = 'observation' AND (related.entity_id = r1.from_id OR related.entity_id = r1.to_id))
		%s
	)
	WHERE cg.depth < ?
)
SELECT DISTINCT
	type, id, title, permalink, from_id, to_id, relation_type,
	category, entity_id, content, MIN(depth) as depth, root_id, created_at
FROM context_graph
GROUP BY type, id, title, permalink, from_id, to_id, relation_type,
	category, entity_id, content, root_id, created_at
ORDER BY depth, type, id
`, valuesList, baseDateFilter, r1DateFilter, relatedDateFilter)

	allArgs := make([]any, 0, len(args)+len(sinceArgs)+1)
	allArgs = append(allArgs, args...)
	if baseDateFilter != "" {
		allArgs = append(allArgs, sinceArgs[0])
	}
	if r1DateFilter != "" {
		allArgs = append(allArgs, sinceArgs[1])
	}
	if relatedDateFilter != "" {
		allArgs = append(allArgs, sinceArgs[2])
	}
	allArgs = append(allArgs, maxDepth)

	rows, err := db.QueryContext(ctx, query, allArgs...)
	if err != nil {
		return nil, fmt.Errorf("context traversal query: %w", err)
	}
	defer rows.Close()

	var out []TraversalRow
	for rows.Next() {
		var r TraversalRow
		if err := rows.Scan(&r.Type, &r.ID, &r.Title, &r.Permalink, &r.FromID, &r.ToID,
			&r.RelationType, &r.Category, &r.EntityID, &r.Content, &r.Depth, &r.RootID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("context traversal scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("context traversal rows: %w", err)
	}
	return out, nil
}
