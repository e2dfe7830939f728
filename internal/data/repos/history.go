package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

// HistoryRepo is append-only: records are inserted and queried, never
// updated or deleted.
type HistoryRepo interface {
	Create(dbc dbctx.Context, records []*domain.HistoryRecord) error
	// RecentByPersona returns records created at or after since, newest
	// first.
	RecentByPersona(dbc dbctx.Context, personaID uuid.UUID, since time.Time) ([]*domain.HistoryRecord, error)
	CountByPersonaSince(dbc dbctx.Context, personaID uuid.UUID, since time.Time) (int64, error)
	// CountByPillarSince returns per-pillar record counts within the
	// window. Records without a pillar are not counted.
	CountByPillarSince(dbc dbctx.Context, personaID uuid.UUID, since time.Time) (map[uuid.UUID]int64, error)
	CountByClusterSince(dbc dbctx.Context, personaID, clusterID uuid.UUID, since time.Time) (int64, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return &historyRepo{
		db:  db,
		log: baseLog.With("repo", "HistoryRepo"),
	}
}

func (r *historyRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *historyRepo) Create(dbc dbctx.Context, records []*domain.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Create(records).Error
}

func (r *historyRepo) RecentByPersona(dbc dbctx.Context, personaID uuid.UUID, since time.Time) ([]*domain.HistoryRecord, error) {
	if personaID == uuid.Nil {
		return nil, nil
	}
	var rows []*domain.HistoryRecord
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("persona_id = ?", personaID).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *historyRepo) CountByPersonaSince(dbc dbctx.Context, personaID uuid.UUID, since time.Time) (int64, error) {
	if personaID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&domain.HistoryRecord{}).
		Where("persona_id = ?", personaID).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *historyRepo) CountByPillarSince(dbc dbctx.Context, personaID uuid.UUID, since time.Time) (map[uuid.UUID]int64, error) {
	if personaID == uuid.Nil {
		return map[uuid.UUID]int64{}, nil
	}
	type pillarCount struct {
		PillarID uuid.UUID `gorm:"column:pillar_id"`
		Count    int64     `gorm:"column:count"`
	}
	var rows []pillarCount
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&domain.HistoryRecord{}).
		Select("pillar_id, COUNT(*) AS count").
		Where("persona_id = ?", personaID).
		Where("pillar_id IS NOT NULL").
		Where("created_at >= ?", since).
		Group("pillar_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.PillarID] = row.Count
	}
	return out, nil
}

func (r *historyRepo) CountByClusterSince(dbc dbctx.Context, personaID, clusterID uuid.UUID, since time.Time) (int64, error) {
	if personaID == uuid.Nil || clusterID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&domain.HistoryRecord{}).
		Where("persona_id = ?", personaID).
		Where("cluster_id = ?", clusterID).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
