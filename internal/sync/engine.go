package sync

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evolv3ai/basic-memory/internal/logging"
	"github.com/evolv3ai/basic-memory/internal/markdown"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

// Config carries the engine's knobs that don't belong to any one
// collaborator: the default entity type assigned to files whose frontmatter
// (or lack thereof) doesn't specify one.
type Config struct {
	DefaultEntityType string
}

// Engine implements interfaces.SyncEngine over a scanner, a graph store, a
// search index, a markdown parser, and a link resolver. A single mutex
// enforces spec.md §5's single-writer contract; readers never take it.
type Engine struct {
	scanner  *Scanner
	store    interfaces.GraphStore
	index    interfaces.SearchIndex
	parser   interfaces.MarkdownParser
	resolver interfaces.LinkResolver
	logger   interfaces.Logger
	cfg      Config

	mu sync.Mutex
}

var _ interfaces.SyncEngine = (*Engine)(nil)

// New constructs an Engine from its collaborators.
func New(scanner *Scanner, store interfaces.GraphStore, index interfaces.SearchIndex, parser interfaces.MarkdownParser, resolver interfaces.LinkResolver, logger interfaces.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = logging.NoOp()
	}
	if cfg.DefaultEntityType == "" {
		cfg.DefaultEntityType = "note"
	}
	return &Engine{
		scanner:  scanner,
		store:    store,
		index:    index,
		parser:   parser,
		resolver: resolver,
		logger:   logger,
		cfg:      cfg,
	}
}

// Sync implements interfaces.SyncEngine. It scans the tree, diffs against
// the store's recorded file state, and applies the two-phase
// upsert-then-backfill algorithm described by spec.md §4.5. Only one sync
// pass runs at a time per Engine; a concurrent caller blocks until the
// in-flight pass completes.
func (e *Engine) Sync(ctx context.Context) (interfaces.SyncReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	report := interfaces.SyncReport{Moved: map[string]string{}}

	scanned, err := e.scanner.Scan(ctx)
	if err != nil {
		return report, err
	}
	storeEntities, err := e.store.ListEntities(ctx)
	if err != nil {
		return report, err
	}

	diff := ComputeDiff(storeEntities, scanned)
	report.Unchanged = diff.Unchanged

	// Deletions precede insertions, moves precede new/modified, per
	// spec.md §4.5's ordering guarantees; within each bucket files are
	// already sorted lexicographically by Diff.
	for _, entity := range diff.Deleted {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := e.applyDelete(ctx, entity); err != nil {
			e.logger.Error("sync.delete.failed", "file_path", entity.FilePath, "error", err)
			report.Failed = append(report.Failed, interfaces.FileFailure{Path: entity.FilePath, Err: err})
			continue
		}
		report.Deleted = append(report.Deleted, entity.FilePath)
	}

	for _, pair := range diff.Moved {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := e.applyMove(ctx, pair); err != nil {
			e.logger.Error("sync.move.failed", "file_path", pair.New.RelPath, "error", err)
			report.Failed = append(report.Failed, interfaces.FileFailure{Path: pair.New.RelPath, Err: err})
			continue
		}
		report.Moved[pair.OldEntity.FilePath] = pair.New.RelPath
	}

	upserts := make([]ScannedFile, 0, len(diff.New)+len(diff.Modified))
	upserts = append(upserts, diff.New...)
	upserts = append(upserts, diff.Modified...)
	sort.Slice(upserts, func(i, j int) bool { return upserts[i].RelPath < upserts[j].RelPath })

	newSet := make(map[string]bool, len(diff.New))
	for _, f := range diff.New {
		newSet[f.RelPath] = true
	}

	for _, f := range upserts {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := e.applyUpsert(ctx, f); err != nil {
			e.logger.Error("sync.upsert.failed", "file_path", f.RelPath, "error", err)
			report.Failed = append(report.Failed, interfaces.FileFailure{Path: f.RelPath, Err: err})
			continue
		}
		if newSet[f.RelPath] {
			report.New = append(report.New, f.RelPath)
		} else {
			report.Modified = append(report.Modified, f.RelPath)
		}
	}

	if err := e.backfill(ctx); err != nil {
		e.logger.Error("sync.backfill.failed", "error", err)
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (e *Engine) applyDelete(ctx context.Context, entity interfaces.Entity) error {
	if err := e.store.DeleteEntity(ctx, entity.ID); err != nil {
		return err
	}
	return e.index.DeleteByEntityID(ctx, entity.ID)
}

func (e *Engine) applyMove(ctx context.Context, pair MovePair) error {
	newPermalink := markdown.DerivePermalink(pair.New.RelPath)
	relocated, err := e.store.RelocateEntity(ctx, pair.OldEntity.ID, pair.New.RelPath, newPermalink)
	if err != nil {
		return err
	}

	if err := e.index.IndexEntity(ctx, relocated); err != nil {
		return err
	}
	observations, err := e.store.ListObservations(ctx, relocated.ID)
	if err != nil {
		return err
	}
	for _, o := range observations {
		if err := e.index.IndexObservation(ctx, relocated.Permalink, o); err != nil {
			return err
		}
	}
	relations, err := e.store.ListOutgoingRelations(ctx, relocated.ID)
	if err != nil {
		return err
	}
	for _, r := range relations {
		if err := e.index.IndexRelation(ctx, relocated.Permalink, r); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) applyUpsert(ctx context.Context, f ScannedFile) error {
	var doc *interfaces.Document
	if f.Kind == FileKindMarkdown {
		parsed, err := e.parser.Parse(f.RelPath, f.Source)
		if err != nil {
			return err
		}
		doc = parsed
		for _, perr := range doc.Errors {
			e.logger.Warn("sync.parse.line_error", "file_path", f.RelPath, "error", perr.Error())
		}
	} else {
		doc = &interfaces.Document{
			FilePath:  f.RelPath,
			Title:     markdown.TitleFromPath(f.RelPath),
			Type:      "file",
			Permalink: markdown.DerivePermalink(f.RelPath),
			Created:   time.Now().UTC(),
			Modified:  time.Now().UTC(),
		}
	}

	entityType := doc.Type
	if entityType == "" {
		entityType = e.cfg.DefaultEntityType
	}

	// Checksum starts as the pending marker so a reader observing this row
	// mid-apply never sees a stale checksum claiming the sync already
	// completed for this file; it is written back once every child row
	// commits, per spec.md §4.5 step 4.
	persisted, err := e.store.UpsertEntity(ctx, interfaces.Entity{
		Title:          doc.Title,
		EntityType:     entityType,
		Permalink:      doc.Permalink,
		FilePath:       doc.FilePath,
		RawFrontMatter: doc.RawFrontMatter,
		Content:        doc.Body,
		Checksum:       "",
		Created:        doc.Created,
		Modified:       doc.Modified,
	})
	if err != nil {
		return err
	}

	observations := make([]interfaces.Observation, 0, len(doc.Observations))
	for _, po := range doc.Observations {
		observations = append(observations, interfaces.Observation{
			Category: po.Category,
			Content:  po.Content,
			Tags:     po.Tags,
			Context:  po.Context,
		})
	}
	storedObservations, err := e.store.ReplaceObservations(ctx, persisted.ID, observations)
	if err != nil {
		return err
	}

	relations := make([]interfaces.Relation, 0, len(doc.Relations))
	for _, pr := range doc.Relations {
		rel := interfaces.Relation{
			ToName:       pr.TargetName,
			RelationType: pr.RelationType,
			Context:      pr.Context,
		}
		if e.resolver != nil {
			if targetPermalink, ok, rerr := e.resolver.Resolve(ctx, pr.TargetName); rerr == nil && ok {
				if target, gerr := e.store.GetEntityByPermalink(ctx, targetPermalink); gerr == nil {
					id := target.ID
					rel.ToID = &id
				}
			}
		}
		relations = append(relations, rel)
	}
	storedRelations, err := e.store.ReplaceOutgoingRelations(ctx, persisted.ID, relations)
	if err != nil {
		return err
	}

	persisted.Checksum = f.Checksum
	persisted, err = e.store.UpsertEntity(ctx, persisted)
	if err != nil {
		return err
	}

	if err := e.index.IndexEntity(ctx, persisted); err != nil {
		return err
	}
	for _, o := range storedObservations {
		if err := e.index.IndexObservation(ctx, persisted.Permalink, o); err != nil {
			return err
		}
	}
	for _, r := range storedRelations {
		if err := e.index.IndexRelation(ctx, persisted.Permalink, r); err != nil {
			return err
		}
	}
	return nil
}

// backfill implements spec.md §4.5 phase 2: retry every still-unresolved
// relation now that every file in this pass has been persisted, so forward
// references to files created later in the same pass resolve correctly.
func (e *Engine) backfill(ctx context.Context) error {
	unresolved, err := e.store.FindUnresolvedRelations(ctx)
	if err != nil {
		return err
	}
	for _, rel := range unresolved {
		if err := ctx.Err(); err != nil {
			return err
		}
		permalink, ok, err := e.resolver.Resolve(ctx, rel.ToName)
		if err != nil || !ok {
			continue
		}
		target, err := e.store.GetEntityByPermalink(ctx, permalink)
		if err != nil {
			continue
		}
		if err := e.store.ResolveRelation(ctx, rel.ID, target.ID); err != nil {
			e.logger.Error("sync.backfill.resolve_failed", "relation_id", rel.ID, "error", err)
			continue
		}
		from, err := e.store.GetEntity(ctx, rel.FromID)
		if err != nil {
			continue
		}
		rel.ToID = &target.ID
		if err := e.index.IndexRelation(ctx, from.Permalink, rel); err != nil {
			e.logger.Error("sync.backfill.index_failed", "relation_id", rel.ID, "error", err)
		}
	}
	return nil
}

// Rebuild implements interfaces.SyncEngine, dropping and repopulating the
// search index from the graph store's current contents without rescanning
// the filesystem, for recovering from index corruption.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.index.Clear(ctx); err != nil {
		return err
	}

	entities, err := e.store.ListEntities(ctx)
	if err != nil {
		return err
	}
	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.index.IndexEntity(ctx, entity); err != nil {
			return err
		}
		observations, err := e.store.ListObservations(ctx, entity.ID)
		if err != nil {
			return err
		}
		for _, o := range observations {
			if err := e.index.IndexObservation(ctx, entity.Permalink, o); err != nil {
				return err
			}
		}
		relations, err := e.store.ListOutgoingRelations(ctx, entity.ID)
		if err != nil {
			return err
		}
		for _, r := range relations {
			if err := e.index.IndexRelation(ctx, entity.Permalink, r); err != nil {
				return err
			}
		}
	}
	return nil
}
