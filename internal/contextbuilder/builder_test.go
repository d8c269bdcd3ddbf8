package contextbuilder_test

import (
	"context"
	"testing"
	"time"

	"github.com/evolv3ai/basic-memory/internal/contextbuilder"
	"github.com/evolv3ai/basic-memory/internal/graph"
	"github.com/evolv3ai/basic-memory/internal/search"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	"github.com/evolv3ai/basic-memory/pkg/testsupport"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type chainFixture struct {
	db           *bun.DB
	store        *graph.Store
	index        *search.Index
	a, bEnt, c   interfaces.Entity
}

// newChain builds entities A, B, C with relations A->B and B->C, each
// created `created` apart, and indexes everything.
func newChain(t *testing.T, created func(i int) time.Time) *chainFixture {
	t.Helper()
	ctx := context.Background()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	if err := graph.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate graph: %v", err)
	}
	if err := search.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate search: %v", err)
	}

	store := graph.NewStore(db)
	index := search.NewIndex(db)

	mk := func(i int, name string) interfaces.Entity {
		e, err := store.UpsertEntity(ctx, interfaces.Entity{
			Title:      name,
			EntityType: "note",
			Permalink:  name,
			FilePath:   name + ".md",
			Checksum:   "chk-" + name,
			Created:    created(i),
			Modified:   created(i),
		})
		if err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
		if err := index.IndexEntity(ctx, e); err != nil {
			t.Fatalf("index %s: %v", name, err)
		}
		return e
	}

	a := mk(0, "a")
	b := mk(1, "b")
	c := mk(2, "c")

	link := func(from, to interfaces.Entity, relType string) {
		toID := to.ID
		rels, err := store.ReplaceOutgoingRelations(ctx, from.ID, []interfaces.Relation{
			{ToID: &toID, ToName: to.Permalink, RelationType: relType},
		})
		if err != nil {
			t.Fatalf("link %s->%s: %v", from.Permalink, to.Permalink, err)
		}
		if err := index.IndexRelation(ctx, from.Permalink, rels[0]); err != nil {
			t.Fatalf("index relation: %v", err)
		}
	}
	link(a, b, "relates_to")
	link(b, c, "relates_to")

	return &chainFixture{db: db, store: store, index: index, a: a, bEnt: b, c: c}
}

// S5: chain A->B->C, depth=1 returns A and B (plus the A->B relation);
// depth=2 additionally returns C and B->C.
func TestBuilderContextDepth(t *testing.T) {
	ctx := context.Background()
	fx := newChain(t, func(i int) time.Time {
		return time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
	})
	builder := contextbuilder.New(fx.db, fx.store, fx.index)

	req1, err := contextbuilder.ParseURI("memory://a?depth=1", time.Now())
	if err != nil {
		t.Fatalf("parse depth1 uri: %v", err)
	}
	res1, err := builder.Build(ctx, req1)
	if err != nil {
		t.Fatalf("build depth1: %v", err)
	}
	if len(res1.PrimaryEntities) != 1 || res1.PrimaryEntities[0].Permalink != "a" {
		t.Fatalf("expected primary=[a], got %+v", res1.PrimaryEntities)
	}
	if !containsEntityPermalink(res1.RelatedEntities, "b") {
		t.Fatalf("depth=1 should include b, got %+v", res1.RelatedEntities)
	}
	if containsEntityPermalink(res1.RelatedEntities, "c") {
		t.Fatalf("depth=1 must not include c, got %+v", res1.RelatedEntities)
	}

	req2, err := contextbuilder.ParseURI("memory://a?depth=2", time.Now())
	if err != nil {
		t.Fatalf("parse depth2 uri: %v", err)
	}
	res2, err := builder.Build(ctx, req2)
	if err != nil {
		t.Fatalf("build depth2: %v", err)
	}
	if !containsEntityPermalink(res2.RelatedEntities, "b") || !containsEntityPermalink(res2.RelatedEntities, "c") {
		t.Fatalf("depth=2 should include b and c, got %+v", res2.RelatedEntities)
	}
}

// S6: items created at t-10d, t-3d, t-1d; `recent?timeframe=7d` returns only
// the latter two, ordered newest-first.
func TestBuilderRecentWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	fx := newChain(t, func(i int) time.Time {
		switch i {
		case 0:
			return now.AddDate(0, 0, -10)
		case 1:
			return now.AddDate(0, 0, -3)
		default:
			return now.AddDate(0, 0, -1)
		}
	})
	builder := contextbuilder.New(fx.db, fx.store, fx.index)
	builder.Now = func() time.Time { return now }

	req, err := contextbuilder.ParseURI("memory://recent?timeframe=7d&max_results=10", now)
	if err != nil {
		t.Fatalf("parse recent uri: %v", err)
	}
	res, err := builder.Build(ctx, req)
	if err != nil {
		t.Fatalf("build recent: %v", err)
	}
	if len(res.PrimaryEntities) != 2 {
		t.Fatalf("expected 2 recent entities, got %d (%+v)", len(res.PrimaryEntities), res.PrimaryEntities)
	}
	if res.PrimaryEntities[0].Permalink != "c" || res.PrimaryEntities[1].Permalink != "b" {
		t.Fatalf("expected newest-first order [c, b], got %+v", res.PrimaryEntities)
	}
}

func containsEntityPermalink(nodes []interfaces.ContextNode, permalink string) bool {
	for _, n := range nodes {
		if n.Entity.Permalink == permalink {
			return true
		}
	}
	return false
}
