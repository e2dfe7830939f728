package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

const notPosted = `NOT EXISTS (SELECT 1 FROM post WHERE post.photo_id = photo.id)`

type PhotoRepo interface {
	Create(dbc dbctx.Context, photos []*domain.Photo) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Photo, error)
	// UnpostedByCluster returns photos in the cluster with no Post row,
	// ordered by filename for determinism.
	UnpostedByCluster(dbc dbctx.Context, clusterID uuid.UUID) ([]*domain.Photo, error)
	// CountUnpostedByPillar counts distinct unposted photos reachable
	// through the pillar's linked clusters.
	CountUnpostedByPillar(dbc dbctx.Context, pillarID uuid.UUID) (int64, error)
	CountUnpostedByPersona(dbc dbctx.Context, personaID uuid.UUID) (int64, error)
}

type photoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPhotoRepo(db *gorm.DB, baseLog *logger.Logger) PhotoRepo {
	return &photoRepo{
		db:  db,
		log: baseLog.With("repo", "PhotoRepo"),
	}
}

func (r *photoRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *photoRepo) Create(dbc dbctx.Context, photos []*domain.Photo) error {
	if len(photos) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Create(photos).Error
}

func (r *photoRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Photo, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Photo
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

func (r *photoRepo) UnpostedByCluster(dbc dbctx.Context, clusterID uuid.UUID) ([]*domain.Photo, error) {
	if clusterID == uuid.Nil {
		return nil, nil
	}
	var rows []*domain.Photo
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("cluster_id = ?", clusterID).
		Where(notPosted).
		Order("filename ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *photoRepo) CountUnpostedByPillar(dbc dbctx.Context, pillarID uuid.UUID) (int64, error) {
	if pillarID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&domain.Photo{}).
		Where("cluster_id IN (SELECT cluster_id FROM pillar_clusters WHERE pillar_id = ?)", pillarID).
		Where(notPosted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *photoRepo) CountUnpostedByPersona(dbc dbctx.Context, personaID uuid.UUID) (int64, error) {
	if personaID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&domain.Photo{}).
		Where("persona_id = ?", personaID).
		Where(notPosted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
