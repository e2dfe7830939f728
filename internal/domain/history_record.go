package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// HistoryRecord is an append-only fact about a past selection decision.
// Never updated or deleted by the engine; rotation deficits, variety windows
// and weekly post counts are all computed from it.
type HistoryRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PersonaID uuid.UUID `gorm:"type:uuid;not null;index" json:"persona_id"`

	PostID    *uuid.UUID `gorm:"type:uuid;index" json:"post_id,omitempty"`
	ClusterID *uuid.UUID `gorm:"type:uuid;index" json:"cluster_id,omitempty"`
	PillarID  *uuid.UUID `gorm:"type:uuid;index" json:"pillar_id,omitempty"`

	StrategyName string `gorm:"column:strategy_name;type:text;not null" json:"strategy_name"`

	// DecisionContext is an audit snapshot of whatever the strategy knew at
	// selection time. Free-form; not read back by the engine.
	DecisionContext datatypes.JSON `gorm:"column:decision_context;type:jsonb" json:"decision_context,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (HistoryRecord) TableName() string { return "history_record" }
