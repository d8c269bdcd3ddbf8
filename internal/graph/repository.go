package graph

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func newEntityRepository(db *bun.DB) repository.Repository[*entityModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*entityModel]{
		NewRecord: func() *entityModel { return &entityModel{} },
		GetID: func(e *entityModel) uuid.UUID {
			return e.ID
		},
		SetID: func(e *entityModel, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "permalink"
		},
		GetIdentifierValue: func(e *entityModel) string {
			return e.Permalink
		},
	})
}

func newObservationRepository(db *bun.DB) repository.Repository[*observationModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*observationModel]{
		NewRecord: func() *observationModel { return &observationModel{} },
		GetID: func(o *observationModel) uuid.UUID {
			return o.ID
		},
		SetID: func(o *observationModel, id uuid.UUID) {
			o.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(o *observationModel) string {
			if o == nil {
				return ""
			}
			return o.ID.String()
		},
	})
}

func newRelationRepository(db *bun.DB) repository.Repository[*relationModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*relationModel]{
		NewRecord: func() *relationModel { return &relationModel{} },
		GetID: func(r *relationModel) uuid.UUID {
			return r.ID
		},
		SetID: func(r *relationModel, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *relationModel) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}
