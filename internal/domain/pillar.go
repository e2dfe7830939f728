package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pillar is a weighted content category belonging to a persona. Weight is a
// share of total content (0-100), not an absolute count; the sum across a
// persona's active pillars should not exceed 100 (enforced at the data
// layer, assumed here).
type Pillar struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PersonaID uuid.UUID `gorm:"type:uuid;not null;index" json:"persona_id"`
	Name      string    `gorm:"type:text;not null" json:"name"`

	Weight float64 `gorm:"not null;default:0" json:"weight"`
	// Priority breaks rotation ties; lower values are more urgent.
	Priority int `gorm:"not null;default:100" json:"priority"`

	// Optional active date range. A nil bound is open-ended.
	ActiveFrom  *time.Time `gorm:"column:active_from" json:"active_from,omitempty"`
	ActiveUntil *time.Time `gorm:"column:active_until" json:"active_until,omitempty"`

	// TargetPostsPerWeek overrides the weight-proportional cadence in gap
	// analysis when set.
	TargetPostsPerWeek *float64 `gorm:"column:target_posts_per_week" json:"target_posts_per_week,omitempty"`

	Clusters []Cluster `gorm:"many2many:pillar_clusters" json:"clusters,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Pillar) TableName() string { return "pillar" }

// ActiveAt reports whether the pillar's date range covers t.
func (p *Pillar) ActiveAt(t time.Time) bool {
	if p.ActiveFrom != nil && t.Before(*p.ActiveFrom) {
		return false
	}
	if p.ActiveUntil != nil && t.After(*p.ActiveUntil) {
		return false
	}
	return true
}
