package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

type PillarRepo interface {
	Create(dbc dbctx.Context, pillars []*domain.Pillar) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Pillar, error)
	// ActiveByPersona returns the persona's pillars whose date range covers
	// at, ordered by priority (lower first).
	ActiveByPersona(dbc dbctx.Context, personaID uuid.UUID, at time.Time) ([]*domain.Pillar, error)
	LinkCluster(dbc dbctx.Context, pillarID, clusterID uuid.UUID) error
}

type pillarRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPillarRepo(db *gorm.DB, baseLog *logger.Logger) PillarRepo {
	return &pillarRepo{
		db:  db,
		log: baseLog.With("repo", "PillarRepo"),
	}
}

func (r *pillarRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *pillarRepo) Create(dbc dbctx.Context, pillars []*domain.Pillar) error {
	if len(pillars) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Create(pillars).Error
}

func (r *pillarRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Pillar, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Pillar
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("Clusters").
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

func (r *pillarRepo) ActiveByPersona(dbc dbctx.Context, personaID uuid.UUID, at time.Time) ([]*domain.Pillar, error) {
	if personaID == uuid.Nil {
		return nil, nil
	}
	var rows []*domain.Pillar
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("persona_id = ?", personaID).
		Where("active_from IS NULL OR active_from <= ?", at).
		Where("active_until IS NULL OR active_until >= ?", at).
		Order("priority ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *pillarRepo) LinkCluster(dbc dbctx.Context, pillarID, clusterID uuid.UUID) error {
	if pillarID == uuid.Nil || clusterID == uuid.Nil {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).
		Exec(`INSERT INTO pillar_clusters (pillar_id, cluster_id) VALUES (?, ?)`, pillarID, clusterID).Error
}
