package graph_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evolv3ai/basic-memory/internal/graph"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	"github.com/evolv3ai/basic-memory/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newTestStore(t *testing.T) (*graph.Store, *bun.DB) {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	if err := graph.Migrate(context.Background(), bunDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return graph.NewStore(bunDB), bunDB
}

func TestStoreUpsertEntityInsertsThenUpdates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := interfaces.Entity{
		Title:      "Search Design",
		EntityType: "note",
		Permalink:  "notes/search-design",
		FilePath:   "notes/search-design.md",
		Content:    "body v1",
		Checksum:   "abc",
		Created:    now,
		Modified:   now,
	}

	created, err := store.UpsertEntity(ctx, e)
	if err != nil {
		t.Fatalf("upsert (insert): %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected a generated ID")
	}

	e.Content = "body v2"
	e.Checksum = "def"
	e.Modified = now.Add(time.Hour)
	updated, err := store.UpsertEntity(ctx, e)
	if err != nil {
		t.Fatalf("upsert (update): %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected same ID on update, got %s vs %s", updated.ID, created.ID)
	}
	if updated.Content != "body v2" {
		t.Fatalf("content = %q", updated.Content)
	}

	all, err := store.ListEntities(ctx)
	if err != nil {
		t.Fatalf("list entities: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 entity after update-in-place, got %d", len(all))
	}
}

func TestStoreUpsertEntityPermalinkChangeSameFileUpdatesInPlace(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	created, err := store.UpsertEntity(ctx, interfaces.Entity{
		Title:      "Search Design",
		EntityType: "note",
		Permalink:  "notes/search-design",
		FilePath:   "notes/search-design.md",
		Checksum:   "abc",
		Created:    now,
		Modified:   now,
	})
	if err != nil {
		t.Fatalf("upsert (insert): %v", err)
	}

	renamed, err := store.UpsertEntity(ctx, interfaces.Entity{
		Title:      "Search Architecture",
		EntityType: "note",
		Permalink:  "notes/search-architecture",
		FilePath:   "notes/search-design.md",
		Checksum:   "def",
		Created:    now,
		Modified:   now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("upsert (permalink change): %v", err)
	}
	if renamed.ID != created.ID {
		t.Fatalf("expected same ID across permalink rename, got %s vs %s", renamed.ID, created.ID)
	}
	if renamed.Permalink != "notes/search-architecture" {
		t.Fatalf("permalink = %q", renamed.Permalink)
	}

	all, err := store.ListEntities(ctx)
	if err != nil {
		t.Fatalf("list entities: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 entity after in-place rename, got %d", len(all))
	}

	if _, err := store.GetEntityByPermalink(ctx, "notes/search-design"); !interfaces.IsNotFound(err) {
		t.Fatalf("expected old permalink to be gone, got %v", err)
	}
}

func TestStoreUpsertEntityPermalinkCollisionAcrossFilesIsConflict(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertEntity(ctx, interfaces.Entity{
		Title:      "Alpha",
		EntityType: "note",
		Permalink:  "notes/shared",
		FilePath:   "notes/alpha.md",
		Checksum:   "abc",
	}); err != nil {
		t.Fatalf("upsert alpha: %v", err)
	}

	_, err := store.UpsertEntity(ctx, interfaces.Entity{
		Title:      "Beta",
		EntityType: "note",
		Permalink:  "notes/shared",
		FilePath:   "notes/beta.md",
		Checksum:   "def",
	})
	var conflict *interfaces.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestStoreGetEntityByPermalinkAndFilePath(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	e, err := store.UpsertEntity(ctx, interfaces.Entity{
		Title:      "Alpha",
		EntityType: "note",
		Permalink:  "notes/alpha",
		FilePath:   "notes/alpha.md",
		Checksum:   "abc",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	byPermalink, err := store.GetEntityByPermalink(ctx, "notes/alpha")
	if err != nil {
		t.Fatalf("get by permalink: %v", err)
	}
	if byPermalink.ID != e.ID {
		t.Fatalf("mismatched ID via permalink lookup")
	}

	byPath, err := store.GetEntityByFilePath(ctx, "notes/alpha.md")
	if err != nil {
		t.Fatalf("get by file path: %v", err)
	}
	if byPath.ID != e.ID {
		t.Fatalf("mismatched ID via file path lookup")
	}

	if _, err := store.GetEntityByPermalink(ctx, "notes/missing"); !interfaces.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestStoreReplaceObservationsReplacesWholeSet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	e, err := store.UpsertEntity(ctx, interfaces.Entity{
		Title:      "Alpha",
		EntityType: "note",
		Permalink:  "notes/alpha",
		FilePath:   "notes/alpha.md",
	})
	if err != nil {
		t.Fatalf("upsert entity: %v", err)
	}

	_, err = store.ReplaceObservations(ctx, e.ID, []interfaces.Observation{
		{Category: "tech", Content: "first pass", Tags: []string{"infra"}},
		{Category: "design", Content: "second pass"},
	})
	if err != nil {
		t.Fatalf("replace observations (1): %v", err)
	}

	final, err := store.ReplaceObservations(ctx, e.ID, []interfaces.Observation{
		{Category: "tech", Content: "only this remains"},
	})
	if err != nil {
		t.Fatalf("replace observations (2): %v", err)
	}
	if len(final) != 1 {
		t.Fatalf("expected 1 observation after replace, got %d", len(final))
	}

	listed, err := store.ListObservations(ctx, e.ID)
	if err != nil {
		t.Fatalf("list observations: %v", err)
	}
	if len(listed) != 1 || listed[0].Content != "only this remains" {
		t.Fatalf("unexpected observations: %+v", listed)
	}
}

func TestStoreReplaceOutgoingRelationsPersistsUnresolvedTargets(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	from, err := store.UpsertEntity(ctx, interfaces.Entity{
		Title:      "Source",
		EntityType: "note",
		Permalink:  "notes/source",
		FilePath:   "notes/source.md",
	})
	if err != nil {
		t.Fatalf("upsert from: %v", err)
	}

	relations, err := store.ReplaceOutgoingRelations(ctx, from.ID, []interfaces.Relation{
		{RelationType: "implements", ToName: "Target Note"},
	})
	if err != nil {
		t.Fatalf("replace relations: %v", err)
	}
	if len(relations) != 1 || relations[0].IsResolved() {
		t.Fatalf("expected 1 unresolved relation, got %+v", relations)
	}

	unresolved, err := store.FindUnresolvedRelations(ctx)
	if err != nil {
		t.Fatalf("find unresolved: %v", err)
	}
	if len(unresolved) != 1 {
		t.Fatalf("expected 1 unresolved relation globally, got %d", len(unresolved))
	}

	to, err := store.UpsertEntity(ctx, interfaces.Entity{
		Title:      "Target Note",
		EntityType: "note",
		Permalink:  "notes/target-note",
		FilePath:   "notes/target-note.md",
	})
	if err != nil {
		t.Fatalf("upsert to: %v", err)
	}

	if err := store.ResolveRelation(ctx, unresolved[0].ID, to.ID); err != nil {
		t.Fatalf("resolve relation: %v", err)
	}

	outgoing, err := store.ListOutgoingRelations(ctx, from.ID)
	if err != nil {
		t.Fatalf("list outgoing: %v", err)
	}
	if len(outgoing) != 1 || !outgoing[0].IsResolved() || *outgoing[0].ToID != to.ID {
		t.Fatalf("unexpected outgoing relations: %+v", outgoing)
	}

	incoming, err := store.ListIncomingRelations(ctx, to.ID)
	if err != nil {
		t.Fatalf("list incoming: %v", err)
	}
	if len(incoming) != 1 {
		t.Fatalf("expected 1 incoming relation, got %d", len(incoming))
	}

	remaining, err := store.FindUnresolvedRelations(ctx)
	if err != nil {
		t.Fatalf("find unresolved after resolve: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no unresolved relations left, got %d", len(remaining))
	}
}

func TestStoreDeleteEntityCascadesObservationsAndRelations(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	e, err := store.UpsertEntity(ctx, interfaces.Entity{
		Title:      "Alpha",
		EntityType: "note",
		Permalink:  "notes/alpha",
		FilePath:   "notes/alpha.md",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if _, err := store.ReplaceObservations(ctx, e.ID, []interfaces.Observation{{Category: "tech", Content: "x"}}); err != nil {
		t.Fatalf("replace observations: %v", err)
	}
	if _, err := store.ReplaceOutgoingRelations(ctx, e.ID, []interfaces.Relation{{RelationType: "relates_to", ToName: "Other"}}); err != nil {
		t.Fatalf("replace relations: %v", err)
	}

	if err := store.DeleteEntity(ctx, e.ID); err != nil {
		t.Fatalf("delete entity: %v", err)
	}

	if _, err := store.GetEntity(ctx, e.ID); !interfaces.IsNotFound(err) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
	observations, err := store.ListObservations(ctx, e.ID)
	if err != nil {
		t.Fatalf("list observations after delete: %v", err)
	}
	if len(observations) != 0 {
		t.Fatalf("expected cascaded observation delete, got %d", len(observations))
	}
	relations, err := store.ListOutgoingRelations(ctx, e.ID)
	if err != nil {
		t.Fatalf("list relations after delete: %v", err)
	}
	if len(relations) != 0 {
		t.Fatalf("expected cascaded relation delete, got %d", len(relations))
	}

	if err := store.DeleteEntity(ctx, uuid.New()); !interfaces.IsNotFound(err) {
		t.Fatalf("expected NotFoundError for missing entity, got %v", err)
	}
}
