package graph

import "github.com/evolv3ai/basic-memory/pkg/interfaces"

func fromEntity(e interfaces.Entity) *entityModel {
	return &entityModel{
		ID:             e.ID,
		Title:          e.Title,
		EntityType:     e.EntityType,
		Permalink:      e.Permalink,
		FilePath:       e.FilePath,
		RawFrontMatter: e.RawFrontMatter,
		Content:        e.Content,
		Checksum:       e.Checksum,
		CreatedAt:      e.Created,
		ModifiedAt:     e.Modified,
	}
}

func toEntity(m *entityModel) interfaces.Entity {
	return interfaces.Entity{
		ID:             m.ID,
		Title:          m.Title,
		EntityType:     m.EntityType,
		Permalink:      m.Permalink,
		FilePath:       m.FilePath,
		RawFrontMatter: m.RawFrontMatter,
		Content:        m.Content,
		Checksum:       m.Checksum,
		Created:        m.CreatedAt,
		Modified:       m.ModifiedAt,
	}
}

func fromObservation(o interfaces.Observation) *observationModel {
	return &observationModel{
		ID:       o.ID,
		EntityID: o.EntityID,
		Category: o.Category,
		Content:  o.Content,
		Tags:     o.Tags,
		Context:  o.Context,
	}
}

func toObservation(m *observationModel) interfaces.Observation {
	return interfaces.Observation{
		ID:       m.ID,
		EntityID: m.EntityID,
		Category: m.Category,
		Content:  m.Content,
		Tags:     m.Tags,
		Context:  m.Context,
	}
}

func fromRelation(r interfaces.Relation) *relationModel {
	return &relationModel{
		ID:           r.ID,
		FromID:       r.FromID,
		ToID:         r.ToID,
		ToName:       r.ToName,
		RelationType: r.RelationType,
		Context:      r.Context,
	}
}

func toRelation(m *relationModel) interfaces.Relation {
	return interfaces.Relation{
		ID:           m.ID,
		FromID:       m.FromID,
		ToID:         m.ToID,
		ToName:       m.ToName,
		RelationType: m.RelationType,
		Context:      m.Context,
	}
}
