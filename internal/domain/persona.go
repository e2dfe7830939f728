package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Persona is an account identity the engine plans content for. Created once
// by an administrative command; read-only to the selection path.
type Persona struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"type:text;not null;uniqueIndex" json:"name"`

	// CaptionStyle carries optional caption/hashtag styling hints passed
	// through to the text generator (tone, emoji usage, signature tags).
	CaptionStyle datatypes.JSON `gorm:"column:caption_style;type:jsonb" json:"caption_style,omitempty"`

	Pillars []Pillar `gorm:"foreignKey:PersonaID" json:"pillars,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Persona) TableName() string { return "persona" }

// UsesPillars reports whether the persona runs weighted pillar rotation.
// Requires Pillars to be preloaded or assigned by the caller.
func (p *Persona) UsesPillars() bool {
	return len(p.Pillars) > 0
}
