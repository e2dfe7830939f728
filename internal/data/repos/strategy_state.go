package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	pkgerrors "github.com/timlawrenz/fluffy-train-sub000/internal/pkg/errors"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

type StrategyStateRepo interface {
	// FindOrCreate returns the persona's state row, inserting an empty one
	// on first access.
	FindOrCreate(dbc dbctx.Context, personaID uuid.UUID) (*domain.StrategyState, error)
	GetByPersonaID(dbc dbctx.Context, personaID uuid.UUID) (*domain.StrategyState, error)
	// UpdateFields performs a single-row atomic update on the persona's
	// state row, guarded by the optimistic-lock version. The write affects
	// no rows and returns ErrStaleState when a concurrent writer bumped
	// the version first; callers reload and retry.
	UpdateFields(dbc dbctx.Context, personaID uuid.UUID, version int64, updates map[string]any) error
}

type strategyStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStrategyStateRepo(db *gorm.DB, baseLog *logger.Logger) StrategyStateRepo {
	return &strategyStateRepo{
		db:  db,
		log: baseLog.With("repo", "StrategyStateRepo"),
	}
}

func (r *strategyStateRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *strategyStateRepo) FindOrCreate(dbc dbctx.Context, personaID uuid.UUID) (*domain.StrategyState, error) {
	if personaID == uuid.Nil {
		return nil, nil
	}
	now := time.Now().UTC()
	row := &domain.StrategyState{
		PersonaID: personaID,
		StateData: []byte(`{}`),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByPersonaID(dbc, personaID)
}

func (r *strategyStateRepo) GetByPersonaID(dbc dbctx.Context, personaID uuid.UUID) (*domain.StrategyState, error) {
	if personaID == uuid.Nil {
		return nil, nil
	}
	var row domain.StrategyState
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("persona_id = ?", personaID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.PersonaID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *strategyStateRepo) UpdateFields(dbc dbctx.Context, personaID uuid.UUID, version int64, updates map[string]any) error {
	if personaID == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]any{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	updates["lock_version"] = version + 1

	res := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&domain.StrategyState{}).
		Where("persona_id = ? AND lock_version = ?", personaID, version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	return nil
}
