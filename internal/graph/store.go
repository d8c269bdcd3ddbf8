package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Store is the bun-backed interfaces.GraphStore. Entity reads go through an
// optional cache layer; every write that touches more than one table runs
// inside a single bun.Tx so a partial failure never leaves an entity with a
// half-replaced observation or relation set.
type Store struct {
	db            *bun.DB
	entities      repository.Repository[*entityModel]
	observations  repository.Repository[*observationModel]
	relations     repository.Repository[*relationModel]
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
}

var _ interfaces.GraphStore = (*Store)(nil)

// Option configures a Store at construction time.
type Option func(*Store)

// WithCache wraps the entity repository's reads in the supplied cache
// service, invalidated on every write to the same permalink, mirroring
// NewBunContentRepositoryWithCache's optional caching.
func WithCache(cacheService cache.CacheService, keySerializer cache.KeySerializer) Option {
	return func(s *Store) {
		s.cacheService = cacheService
		s.keySerializer = keySerializer
	}
}

// NewStore constructs a Store over an already-migrated bun.DB.
func NewStore(db *bun.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}

	base := newEntityRepository(db)
	s.entities = wrapWithCache(base, s.cacheService, s.keySerializer)
	s.observations = newObservationRepository(db)
	s.relations = newRelationRepository(db)
	return s
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

// UpsertEntity implements interfaces.GraphStore. Its primary match key is
// permalink, but a permalink change on an already-synced file (file_path
// unchanged, frontmatter permalink edited) must still update that file's
// existing row in place rather than attempt an insert that collides with
// idx_entities_file_path: findByFilePathTx catches that case before falling
// through to insert. A permalink that belongs to a different file's row is
// a genuine conflict, not a rename, and is rejected rather than silently
// reassigning that row's content to the new file.
func (s *Store) UpsertEntity(ctx context.Context, e interfaces.Entity) (interfaces.Entity, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.Entity{}, err
	}

	model := fromEntity(e)

	var result *entityModel
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		byPermalink, permalinkErr := s.findByPermalinkTx(ctx, tx, model.Permalink)
		switch {
		case permalinkErr == nil:
			if model.FilePath != "" && byPermalink.FilePath != model.FilePath {
				return &interfaces.ConflictError{Resource: "entity", Key: model.Permalink, Reason: "permalink already bound to another file"}
			}
			model.ID = byPermalink.ID
			model.CreatedAt = byPermalink.CreatedAt
			if _, err := tx.NewUpdate().Model(model).WherePK().Exec(ctx); err != nil {
				return mapRepositoryError(err, "entity", model.Permalink)
			}
		case interfaces.IsNotFound(permalinkErr):
			byFilePath, filePathErr := s.findByFilePathTx(ctx, tx, model.FilePath)
			switch {
			case filePathErr == nil:
				model.ID = byFilePath.ID
				model.CreatedAt = byFilePath.CreatedAt
				if _, err := tx.NewUpdate().Model(model).WherePK().Exec(ctx); err != nil {
					return mapRepositoryError(err, "entity", model.Permalink)
				}
			case interfaces.IsNotFound(filePathErr):
				if model.ID == uuid.Nil {
					model.ID = uuid.New()
				}
				if model.CreatedAt.IsZero() {
					model.CreatedAt = time.Now().UTC()
				}
				if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
					return mapRepositoryError(err, "entity", model.Permalink)
				}
			default:
				return filePathErr
			}
		default:
			return permalinkErr
		}
		result = model
		return nil
	})
	if err != nil {
		return interfaces.Entity{}, err
	}
	return toEntity(result), nil
}

// RelocateEntity implements interfaces.GraphStore. Unlike UpsertEntity,
// which matches on permalink, this updates a specific row by ID so a move
// can change the permalink itself without being mistaken for a new entity.
func (s *Store) RelocateEntity(ctx context.Context, id uuid.UUID, filePath, permalink string) (interfaces.Entity, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.Entity{}, err
	}

	var result *entityModel
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		model := new(entityModel)
		if err := tx.NewSelect().Model(model).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
			return mapRepositoryError(err, "entity", id.String())
		}
		if model.Permalink != permalink {
			conflict := new(entityModel)
			cErr := tx.NewSelect().Model(conflict).Where("?TableAlias.permalink = ? AND ?TableAlias.id != ?", permalink, id).Scan(ctx)
			if cErr == nil {
				return &interfaces.ConflictError{Resource: "entity", Key: permalink, Reason: "permalink already bound to another entity"}
			}
			if !interfaces.IsNotFound(mapRepositoryError(cErr, "entity", permalink)) {
				return mapRepositoryError(cErr, "entity", permalink)
			}
		}
		model.FilePath = filePath
		model.Permalink = permalink
		if _, err := tx.NewUpdate().Model(model).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("relocate entity %s: %w", id, err)
		}
		result = model
		return nil
	})
	if err != nil {
		return interfaces.Entity{}, err
	}
	return toEntity(result), nil
}

func (s *Store) findByPermalinkTx(ctx context.Context, tx bun.Tx, permalink string) (*entityModel, error) {
	model := new(entityModel)
	err := tx.NewSelect().Model(model).Where("?TableAlias.permalink = ?", permalink).Scan(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "entity", permalink)
	}
	return model, nil
}

func (s *Store) findByFilePathTx(ctx context.Context, tx bun.Tx, filePath string) (*entityModel, error) {
	model := new(entityModel)
	err := tx.NewSelect().Model(model).Where("?TableAlias.file_path = ?", filePath).Scan(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "entity", filePath)
	}
	return model, nil
}

// GetEntity implements interfaces.GraphStore.
func (s *Store) GetEntity(ctx context.Context, id uuid.UUID) (interfaces.Entity, error) {
	model, err := s.entities.GetByID(ctx, id.String())
	if err != nil {
		return interfaces.Entity{}, mapRepositoryError(err, "entity", id.String())
	}
	return toEntity(model), nil
}

// GetEntityByPermalink implements interfaces.GraphStore.
func (s *Store) GetEntityByPermalink(ctx context.Context, permalink string) (interfaces.Entity, error) {
	model, err := s.entities.GetByIdentifier(ctx, permalink)
	if err != nil {
		return interfaces.Entity{}, mapRepositoryError(err, "entity", permalink)
	}
	return toEntity(model), nil
}

// GetEntityByFilePath implements interfaces.GraphStore.
func (s *Store) GetEntityByFilePath(ctx context.Context, filePath string) (interfaces.Entity, error) {
	model := new(entityModel)
	err := s.db.NewSelect().Model(model).Where("?TableAlias.file_path = ?", filePath).Scan(ctx)
	if err != nil {
		return interfaces.Entity{}, mapRepositoryError(err, "entity", filePath)
	}
	return toEntity(model), nil
}

// ListEntities implements interfaces.GraphStore.
func (s *Store) ListEntities(ctx context.Context) ([]interfaces.Entity, error) {
	var models []*entityModel
	if err := s.db.NewSelect().Model(&models).Order("permalink ASC").Scan(ctx); err != nil {
		return nil, mapRepositoryError(err, "entity", "")
	}
	out := make([]interfaces.Entity, 0, len(models))
	for _, m := range models {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// DeleteEntity implements interfaces.GraphStore. It cascades to observations
// and both directions of relations inside one transaction, the same
// defense-in-depth BunContentRepository.Delete applies alongside schema-level
// ON DELETE CASCADE.
func (s *Store) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*observationModel)(nil)).Where("?TableAlias.entity_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete observations: %w", err)
		}
		if _, err := tx.NewDelete().Model((*relationModel)(nil)).Where("?TableAlias.from_id = ? OR ?TableAlias.to_id = ?", id, id).Exec(ctx); err != nil {
			return fmt.Errorf("delete relations: %w", err)
		}
		result, err := tx.NewDelete().Model((*entityModel)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete entity: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete entity rows affected: %w", err)
		}
		if affected == 0 {
			return &interfaces.NotFoundError{Resource: "entity", Key: id.String()}
		}
		return nil
	})
}

// ReplaceObservations implements interfaces.GraphStore.
func (s *Store) ReplaceObservations(ctx context.Context, entityID uuid.UUID, observations []interfaces.Observation) ([]interfaces.Observation, error) {
	var result []interfaces.Observation
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*observationModel)(nil)).Where("?TableAlias.entity_id = ?", entityID).Exec(ctx); err != nil {
			return fmt.Errorf("delete observations: %w", err)
		}
		if len(observations) == 0 {
			return nil
		}

		toInsert := make([]*observationModel, 0, len(observations))
		for _, o := range observations {
			m := fromObservation(o)
			if m.ID == uuid.Nil {
				m.ID = uuid.New()
			}
			m.EntityID = entityID
			toInsert = append(toInsert, m)
		}
		if _, err := tx.NewInsert().Model(&toInsert).Exec(ctx); err != nil {
			return fmt.Errorf("insert observations: %w", err)
		}
		for _, m := range toInsert {
			result = append(result, toObservation(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListObservations implements interfaces.GraphStore.
func (s *Store) ListObservations(ctx context.Context, entityID uuid.UUID) ([]interfaces.Observation, error) {
	var models []*observationModel
	err := s.db.NewSelect().Model(&models).Where("?TableAlias.entity_id = ?", entityID).Order("category ASC").Scan(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "observation", entityID.String())
	}
	out := make([]interfaces.Observation, 0, len(models))
	for _, m := range models {
		out = append(out, toObservation(m))
	}
	return out, nil
}

// ReplaceOutgoingRelations implements interfaces.GraphStore.
func (s *Store) ReplaceOutgoingRelations(ctx context.Context, entityID uuid.UUID, relations []interfaces.Relation) ([]interfaces.Relation, error) {
	var result []interfaces.Relation
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*relationModel)(nil)).Where("?TableAlias.from_id = ?", entityID).Exec(ctx); err != nil {
			return fmt.Errorf("delete relations: %w", err)
		}
		if len(relations) == 0 {
			return nil
		}

		toInsert := make([]*relationModel, 0, len(relations))
		for _, r := range relations {
			m := fromRelation(r)
			if m.ID == uuid.Nil {
				m.ID = uuid.New()
			}
			m.FromID = entityID
			toInsert = append(toInsert, m)
		}
		if _, err := tx.NewInsert().Model(&toInsert).Exec(ctx); err != nil {
			return fmt.Errorf("insert relations: %w", err)
		}
		for _, m := range toInsert {
			result = append(result, toRelation(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListOutgoingRelations implements interfaces.GraphStore.
func (s *Store) ListOutgoingRelations(ctx context.Context, entityID uuid.UUID) ([]interfaces.Relation, error) {
	var models []*relationModel
	err := s.db.NewSelect().Model(&models).Where("?TableAlias.from_id = ?", entityID).Scan(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "relation", entityID.String())
	}
	out := make([]interfaces.Relation, 0, len(models))
	for _, m := range models {
		out = append(out, toRelation(m))
	}
	return out, nil
}

// ListIncomingRelations implements interfaces.GraphStore.
func (s *Store) ListIncomingRelations(ctx context.Context, entityID uuid.UUID) ([]interfaces.Relation, error) {
	var models []*relationModel
	err := s.db.NewSelect().Model(&models).Where("?TableAlias.to_id = ?", entityID).Scan(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "relation", entityID.String())
	}
	out := make([]interfaces.Relation, 0, len(models))
	for _, m := range models {
		out = append(out, toRelation(m))
	}
	return out, nil
}

// FindUnresolvedRelations implements interfaces.GraphStore.
func (s *Store) FindUnresolvedRelations(ctx context.Context) ([]interfaces.Relation, error) {
	var models []*relationModel
	err := s.db.NewSelect().Model(&models).Where("?TableAlias.to_id IS NULL").Scan(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "relation", "")
	}
	out := make([]interfaces.Relation, 0, len(models))
	for _, m := range models {
		out = append(out, toRelation(m))
	}
	return out, nil
}

// ResolveRelation implements interfaces.GraphStore.
func (s *Store) ResolveRelation(ctx context.Context, relationID uuid.UUID, targetID uuid.UUID) error {
	result, err := s.db.NewUpdate().
		Model((*relationModel)(nil)).
		Set("to_id = ?", targetID).
		Where("?TableAlias.id = ?", relationID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("resolve relation %s: %w", relationID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve relation rows affected: %w", err)
	}
	if affected == 0 {
		return &interfaces.NotFoundError{Resource: "relation", Key: relationID.String()}
	}
	return nil
}
