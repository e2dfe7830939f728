package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StrategyState is per-persona scratch state used by strategies across
// invocations (rotation index, weekly cluster commitment). Exactly one row
// per persona; mutated only through StateService so every write invalidates
// the cache entry.
type StrategyState struct {
	PersonaID uuid.UUID `gorm:"type:uuid;primaryKey" json:"persona_id"`

	ActiveStrategy string         `gorm:"column:active_strategy;type:text" json:"active_strategy"`
	StateData      datatypes.JSON `gorm:"column:state_data;type:jsonb" json:"state_data,omitempty"`
	StartedAt      *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`

	// LockVersion is the optimistic-lock counter. Every guarded write
	// increments it; a write carrying a stale version affects no rows.
	LockVersion int64 `gorm:"column:lock_version;not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StrategyState) TableName() string { return "strategy_state" }

// Data decodes StateData into a map, returning an empty map when unset.
func (s *StrategyState) Data() map[string]any {
	out := map[string]any{}
	if len(s.StateData) == 0 {
		return out
	}
	_ = json.Unmarshal(s.StateData, &out)
	return out
}
