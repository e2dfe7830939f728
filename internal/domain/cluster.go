package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cluster is a thematic grouping of photos produced by an external
// clustering process. A cluster whose photos are all posted is "exhausted"
// and excluded from selection.
type Cluster struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PersonaID uuid.UUID `gorm:"type:uuid;not null;index" json:"persona_id"`
	Name      string    `gorm:"type:text;not null" json:"name"`

	Photos  []Photo  `gorm:"foreignKey:ClusterID" json:"photos,omitempty"`
	Pillars []Pillar `gorm:"many2many:pillar_clusters" json:"pillars,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Cluster) TableName() string { return "cluster" }
