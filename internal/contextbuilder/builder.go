package contextbuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Builder implements interfaces.ContextBuilder over the graph store's full
// records and the search index's recursive traversal, following spec.md
// §4.6: resolve a seed set from the request's mode, then expand it breadth
// first up to the requested depth.
type Builder struct {
	db    *bun.DB
	store interfaces.GraphStore
	index interfaces.SearchIndex
	// Now supplies the clock used to stamp ContextResult.GeneratedAt and to
	// resolve relative timeframes; overridable in tests.
	Now func() time.Time
}

var _ interfaces.ContextBuilder = (*Builder)(nil)

// New constructs a Builder over an already-migrated bun.DB plus the graph
// store and search index layered on top of it.
func New(db *bun.DB, store interfaces.GraphStore, index interfaces.SearchIndex) *Builder {
	return &Builder{db: db, store: store, index: index}
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Build implements interfaces.ContextBuilder. It never mutates the store or
// index.
func (b *Builder) Build(ctx context.Context, req interfaces.ContextRequest) (interfaces.ContextResult, error) {
	now := b.now()

	since, err := SinceFromTimeframe(req.Timeframe, now)
	if err != nil {
		return interfaces.ContextResult{}, err
	}

	primary, err := b.resolveSeeds(ctx, req, since)
	if err != nil {
		return interfaces.ContextResult{}, err
	}

	result := interfaces.ContextResult{
		PrimaryEntities: primary,
		GeneratedAt:     now,
	}
	if len(primary) == 0 {
		return result, nil
	}

	seeds := make([]Seed, 0, len(primary))
	for _, e := range primary {
		seeds = append(seeds, Seed{Type: "entity", ID: e.ID.String()})
	}

	rows, err := traverse(ctx, b.db, seeds, req.Depth, since)
	if err != nil {
		return interfaces.ContextResult{}, err
	}

	result.RelatedEntities, err = b.assembleRelated(ctx, rows)
	if err != nil {
		return interfaces.ContextResult{}, err
	}
	return result, nil
}

func (b *Builder) resolveSeeds(ctx context.Context, req interfaces.ContextRequest, since time.Time) ([]interfaces.Entity, error) {
	switch req.Mode {
	case interfaces.ContextModeExact, interfaces.ContextModeRelated:
		e, err := b.store.GetEntityByPermalink(ctx, req.Target)
		if err != nil {
			if interfaces.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return []interfaces.Entity{e}, nil

	case interfaces.ContextModeGlob:
		hits, err := b.index.Search(ctx, interfaces.SearchQuery{
			PermalinkGlob: req.Target,
			Types:         []interfaces.SearchResultKind{interfaces.SearchResultEntity},
			Limit:         req.MaxResults,
		})
		if err != nil {
			return nil, err
		}
		return b.entitiesFromHits(ctx, hits)

	case interfaces.ContextModeRecent:
		hits, err := b.index.Search(ctx, interfaces.SearchQuery{
			Types: []interfaces.SearchResultKind{interfaces.SearchResultEntity},
			After: since,
			Limit: req.MaxResults,
		})
		if err != nil {
			return nil, err
		}
		// A non-empty EntityType filters the seeds after the MaxResults limit.
		entities, err := b.entitiesFromHits(ctx, hits)
		if err != nil || req.EntityType == "" {
			return entities, err
		}
		filtered := entities[:0]
		for _, e := range entities {
			if e.EntityType == req.EntityType {
				filtered = append(filtered, e)
			}
		}
		return filtered, nil

	default:
		return nil, fmt.Errorf("contextbuilder: unknown mode %q", req.Mode)
	}
}

func (b *Builder) entitiesFromHits(ctx context.Context, hits []interfaces.SearchResult) ([]interfaces.Entity, error) {
	entities := make([]interfaces.Entity, 0, len(hits))
	for _, h := range hits {
		e, err := b.store.GetEntity(ctx, h.EntityID)
		if err != nil {
			if interfaces.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// assembleRelated folds the traversal's flat row stream into ContextNodes:
// every depth>=1 entity row becomes a node, and relation/observation rows
// attach themselves to whichever node they connect to by ID. This is a
// best-effort annotation rather than full multi-hop path reconstruction --
// a relation three hops from the seed attaches to its endpoint node exactly
// as a one-hop relation would. Rows repeated across roots are kept once, at
// their shortest depth (rows arrive ordered by depth).
func (b *Builder) assembleRelated(ctx context.Context, rows []TraversalRow) ([]interfaces.ContextNode, error) {
	order := make([]string, 0, len(rows))
	nodes := make(map[string]*interfaces.ContextNode, len(rows))

	seenEntity := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.Type != "entity" || seenEntity[row.ID] {
			continue
		}
		seenEntity[row.ID] = true
		if row.Depth == 0 {
			continue
		}
		id, err := uuid.Parse(row.ID)
		if err != nil {
			continue
		}
		entity, err := b.store.GetEntity(ctx, id)
		if err != nil {
			if interfaces.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		nodes[row.ID] = &interfaces.ContextNode{Entity: entity, Depth: row.Depth}
		order = append(order, row.ID)
	}

	attached := make(map[string]bool, len(rows))
	for _, row := range rows {
		key := row.Type + ":" + row.ID
		if attached[key] {
			continue
		}
		attached[key] = true
		switch row.Type {
		case "relation":
			rel, ok := relationFromRow(row)
			if !ok {
				continue
			}
			if n, ok := nodes[row.FromID]; ok {
				n.RelationPath = append(n.RelationPath, rel)
			}
			if n, ok := nodes[row.ToID]; ok {
				n.RelationPath = append(n.RelationPath, rel)
			}
		case "observation":
			obs, ok := observationFromRow(row)
			if !ok {
				continue
			}
			if n, ok := nodes[row.EntityID]; ok {
				n.Observations = append(n.Observations, obs)
			}
		}
	}

	out := make([]interfaces.ContextNode, 0, len(order))
	for _, id := range order {
		out = append(out, *nodes[id])
	}
	return out, nil
}

func relationFromRow(row TraversalRow) (interfaces.Relation, bool) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return interfaces.Relation{}, false
	}
	fromID, err := uuid.Parse(row.FromID)
	if err != nil {
		return interfaces.Relation{}, false
	}
	rel := interfaces.Relation{
		ID:           id,
		FromID:       fromID,
		RelationType: row.RelationType,
		Context:      row.Content,
	}
	if row.ToID != "" {
		if toID, err := uuid.Parse(row.ToID); err == nil {
			rel.ToID = &toID
		}
	}
	return rel, true
}

func observationFromRow(row TraversalRow) (interfaces.Observation, bool) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return interfaces.Observation{}, false
	}
	entityID, err := uuid.Parse(row.EntityID)
	if err != nil {
		return interfaces.Observation{}, false
	}
	return interfaces.Observation{
		ID:       id,
		EntityID: entityID,
		Category: row.Category,
		Content:  row.Content,
	}, true
}
