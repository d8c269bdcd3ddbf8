package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const rowColumns = "type, id, title, content, permalink, file_path, from_id, to_id, relation_type, category, entity_id, created_at"

// row mirrors one physical row of the search_index FTS5 table. All columns
// are text in FTS5, so timestamps are stored RFC3339 (lexically sortable).
type row struct {
	Type, ID, Title, Content, Permalink, FilePath string
	FromID, ToID, RelationType, Category, EntityID string
	CreatedAt string
}

func (r row) args() []any {
	return []any{r.Type, r.ID, r.Title, r.Content, r.Permalink, r.FilePath, r.FromID, r.ToID, r.RelationType, r.Category, r.EntityID, r.CreatedAt}
}

// Index is the FTS5-backed interfaces.SearchIndex, built directly on
// bun.DB.ExecContext/QueryContext since bm25() ranking and FTS5's own MATCH
// operator fall outside what the bun query builder models.
type Index struct {
	db *bun.DB
}

var _ interfaces.SearchIndex = (*Index)(nil)

// NewIndex constructs an Index over an already-migrated bun.DB.
func NewIndex(db *bun.DB) *Index {
	return &Index{db: db}
}

// IndexEntity implements interfaces.SearchIndex.
func (idx *Index) IndexEntity(ctx context.Context, e interfaces.Entity) error {
	if err := idx.deleteRow(ctx, "entity", e.ID.String()); err != nil {
		return err
	}
	return idx.insertRow(ctx, row{
		Type:      "entity",
		ID:        e.ID.String(),
		Title:     e.Title,
		Content:   e.Content,
		Permalink: e.Permalink,
		FilePath:  e.FilePath,
		EntityID:  e.ID.String(),
		CreatedAt: e.Created.UTC().Format(time.RFC3339),
	})
}

// IndexObservation implements interfaces.SearchIndex.
func (idx *Index) IndexObservation(ctx context.Context, entityPermalink string, o interfaces.Observation) error {
	if err := idx.deleteRow(ctx, "observation", o.ID.String()); err != nil {
		return err
	}
	return idx.insertRow(ctx, row{
		Type:      "observation",
		ID:        o.ID.String(),
		Title:     o.Category,
		Content:   strings.Join(append([]string{o.Content}, o.Tags...), " "),
		Permalink: entityPermalink,
		Category:  o.Category,
		EntityID:  o.EntityID.String(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// IndexRelation implements interfaces.SearchIndex.
func (idx *Index) IndexRelation(ctx context.Context, fromPermalink string, r interfaces.Relation) error {
	if err := idx.deleteRow(ctx, "relation", r.ID.String()); err != nil {
		return err
	}
	toID := ""
	if r.ToID != nil {
		toID = r.ToID.String()
	}
	return idx.insertRow(ctx, row{
		Type:         "relation",
		ID:           r.ID.String(),
		Title:        r.RelationType,
		Content:      r.Context,
		Permalink:    fromPermalink,
		FromID:       r.FromID.String(),
		ToID:         toID,
		RelationType: r.RelationType,
		EntityID:     r.FromID.String(),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

// DeleteByEntityID implements interfaces.SearchIndex, removing the entity's
// own row plus every observation and relation row that references it.
func (idx *Index) DeleteByEntityID(ctx context.Context, entityID uuid.UUID) error {
	id := entityID.String()
	statements := []struct {
		sql  string
		args []any
	}{
		{"DELETE FROM search_index WHERE type = 'entity' AND id = ?", []any{id}},
		{"DELETE FROM search_index WHERE type = 'observation' AND entity_id = ?", []any{id}},
		{"DELETE FROM search_index WHERE type = 'relation' AND (from_id = ? OR to_id = ?)", []any{id, id}},
	}
	for _, stmt := range statements {
		if _, err := idx.db.ExecContext(ctx, stmt.sql, stmt.args...); err != nil {
			return fmt.Errorf("search delete by entity %s: %w", id, err)
		}
	}
	return nil
}

// DeleteByPermalink implements interfaces.SearchIndex.
func (idx *Index) DeleteByPermalink(ctx context.Context, permalink string) error {
	var id string
	err := idx.db.QueryRowContext(ctx, "SELECT id FROM search_index WHERE type = 'entity' AND permalink = ?", permalink).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("search lookup permalink %s: %w", permalink, err)
	}
	entityID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("search parse entity id %q: %w", id, err)
	}
	return idx.DeleteByEntityID(ctx, entityID)
}

func (idx *Index) deleteRow(ctx context.Context, kind, id string) error {
	_, err := idx.db.ExecContext(ctx, "DELETE FROM search_index WHERE type = ? AND id = ?", kind, id)
	if err != nil {
		return fmt.Errorf("search delete %s %s: %w", kind, id, err)
	}
	return nil
}

func (idx *Index) insertRow(ctx context.Context, r row) error {
	stmt := fmt.Sprintf("INSERT INTO search_index(%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", rowColumns)
	if _, err := idx.db.ExecContext(ctx, stmt, r.args()...); err != nil {
		return fmt.Errorf("search insert %s %s: %w", r.Type, r.ID, err)
	}
	return nil
}

// Search implements interfaces.SearchIndex. Full-text matches rank with
// FTS5's bm25(); glob filtering on permalink happens in Go via
// github.com/gobwas/glob so `*` can be scoped to "no /" while `**` crosses
// path separators, a distinction SQLite's own GLOB operator doesn't make.
func (idx *Index) Search(ctx context.Context, q interfaces.SearchQuery) ([]interfaces.SearchResult, error) {
	var matcher glob.Glob
	if q.PermalinkGlob != "" {
		g, err := glob.Compile(q.PermalinkGlob, '/')
		if err != nil {
			return nil, fmt.Errorf("search: invalid permalink_pattern %q: %w", q.PermalinkGlob, err)
		}
		matcher = g
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	// When filtering by permalink glob, the SQL LIMIT/OFFSET would apply
	// before the Go-side glob filter and could silently drop matches that
	// fall outside the unfiltered page. Pull an unbounded result set from
	// SQL in that case and apply limit/offset in Go after filtering instead.
	applyLimitInSQL := matcher == nil

	var where []string
	var args []any
	var sqlQuery string
	if strings.TrimSpace(q.Text) != "" {
		sqlQuery = fmt.Sprintf("SELECT %s, bm25(search_index) AS rank FROM search_index", rowColumns)
		where = append(where, "search_index MATCH ?")
		args = append(args, q.Text)
	} else {
		sqlQuery = fmt.Sprintf("SELECT %s, 0.0 AS rank FROM search_index", rowColumns)
	}
	if len(q.Types) > 0 {
		placeholders := make([]string, len(q.Types))
		for i, t := range q.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ", ")))
	}
	if !q.After.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, q.After.UTC().Format(time.RFC3339))
	}
	if q.EntityID != uuid.Nil {
		id := q.EntityID.String()
		where = append(where, "(id = ? OR entity_id = ? OR from_id = ? OR to_id = ?)")
		args = append(args, id, id, id, id)
	}
	if len(where) > 0 {
		sqlQuery += " WHERE " + strings.Join(where, " AND ")
	}
	if strings.TrimSpace(q.Text) != "" {
		sqlQuery += " ORDER BY rank ASC, created_at DESC, id ASC"
	} else {
		sqlQuery += " ORDER BY created_at DESC, id ASC"
	}
	if applyLimitInSQL {
		sqlQuery += " LIMIT ? OFFSET ?"
		args = append(args, limit, q.Offset)
	}

	rows, err := idx.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []interfaces.SearchResult
	for rows.Next() {
		var r row
		var rank float64
		if err := rows.Scan(&r.Type, &r.ID, &r.Title, &r.Content, &r.Permalink, &r.FilePath, &r.FromID, &r.ToID, &r.RelationType, &r.Category, &r.EntityID, &r.CreatedAt, &rank); err != nil {
			return nil, fmt.Errorf("search scan: %w", err)
		}
		if matcher != nil && !matcher.Match(r.Permalink) {
			continue
		}
		entityID, err := uuid.Parse(r.EntityID)
		if err != nil {
			entityID = uuid.Nil
		}
		created, _ := time.Parse(time.RFC3339, r.CreatedAt)
		results = append(results, interfaces.SearchResult{
			Kind:      interfaces.SearchResultKind(r.Type),
			EntityID:  entityID,
			Permalink: r.Permalink,
			Title:     r.Title,
			Snippet:   r.Content,
			Score:     rank,
			CreatedAt: created,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}

	if !applyLimitInSQL {
		results = paginate(results, q.Offset, limit)
	}
	return results, nil
}

// Clear implements interfaces.SearchIndex, dropping every indexed row so the
// sync engine's Rebuild can repopulate from the graph store's current state.
func (idx *Index) Clear(ctx context.Context) error {
	if _, err := idx.db.ExecContext(ctx, "DELETE FROM search_index"); err != nil {
		return fmt.Errorf("search clear: %w", err)
	}
	return nil
}

func paginate(results []interfaces.SearchResult, offset, limit int) []interfaces.SearchResult {
	if offset >= len(results) {
		return nil
	}
	results = results[offset:]
	if limit < len(results) {
		results = results[:limit]
	}
	return results
}
