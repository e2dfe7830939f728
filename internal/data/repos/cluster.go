package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

// hasUnpostedPhoto keeps exhausted clusters out of availability queries.
const hasUnpostedPhoto = `EXISTS (
	SELECT 1 FROM photo
	WHERE photo.cluster_id = cluster.id
	AND NOT EXISTS (SELECT 1 FROM post WHERE post.photo_id = photo.id)
)`

type ClusterRepo interface {
	Create(dbc dbctx.Context, clusters []*domain.Cluster) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Cluster, error)
	// AvailableByPersona returns the persona's clusters that still hold at
	// least one unposted photo, alphabetically ordered for determinism.
	AvailableByPersona(dbc dbctx.Context, personaID uuid.UUID) ([]*domain.Cluster, error)
	// AvailableByPillar is AvailableByPersona scoped to clusters linked to
	// the pillar.
	AvailableByPillar(dbc dbctx.Context, pillarID uuid.UUID) ([]*domain.Cluster, error)
}

type clusterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClusterRepo(db *gorm.DB, baseLog *logger.Logger) ClusterRepo {
	return &clusterRepo{
		db:  db,
		log: baseLog.With("repo", "ClusterRepo"),
	}
}

func (r *clusterRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *clusterRepo) Create(dbc dbctx.Context, clusters []*domain.Cluster) error {
	if len(clusters) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Create(clusters).Error
}

func (r *clusterRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Cluster, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Cluster
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *clusterRepo) AvailableByPersona(dbc dbctx.Context, personaID uuid.UUID) ([]*domain.Cluster, error) {
	if personaID == uuid.Nil {
		return nil, nil
	}
	var rows []*domain.Cluster
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("persona_id = ?", personaID).
		Where(hasUnpostedPhoto).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *clusterRepo) AvailableByPillar(dbc dbctx.Context, pillarID uuid.UUID) ([]*domain.Cluster, error) {
	if pillarID == uuid.Nil {
		return nil, nil
	}
	var rows []*domain.Cluster
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("cluster.id IN (SELECT cluster_id FROM pillar_clusters WHERE pillar_id = ?)", pillarID).
		Where(hasUnpostedPhoto).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
