package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

type PersonaRepo interface {
	Create(dbc dbctx.Context, personas []*domain.Persona) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Persona, error)
	GetByName(dbc dbctx.Context, name string) (*domain.Persona, error)
	List(dbc dbctx.Context) ([]*domain.Persona, error)
}

type personaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonaRepo(db *gorm.DB, baseLog *logger.Logger) PersonaRepo {
	return &personaRepo{
		db:  db,
		log: baseLog.With("repo", "PersonaRepo"),
	}
}

func (r *personaRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *personaRepo) Create(dbc dbctx.Context, personas []*domain.Persona) error {
	if len(personas) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Create(personas).Error
}

func (r *personaRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Persona, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Persona
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("Pillars").
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

func (r *personaRepo) GetByName(dbc dbctx.Context, name string) (*domain.Persona, error) {
	if name == "" {
		return nil, nil
	}
	var row domain.Persona
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("Pillars").
		Where("name = ?", name).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *personaRepo) List(dbc dbctx.Context) ([]*domain.Persona, error) {
	var rows []*domain.Persona
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("Pillars").
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
