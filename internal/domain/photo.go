package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Photo is an ingested image (or short video) belonging to a persona.
// Immutable once created except for cluster assignment. A photo is
// "unposted" while no Post row references it.
type Photo struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PersonaID uuid.UUID  `gorm:"type:uuid;not null;index" json:"persona_id"`
	ClusterID *uuid.UUID `gorm:"type:uuid;index" json:"cluster_id,omitempty"`

	Filename    string `gorm:"type:text;not null" json:"filename"`
	Description string `gorm:"type:text" json:"description"`

	// Metadata holds analysis output from the ingestion pipeline
	// (salient_regions, is_video, tags). The engine only reads it.
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Photo) TableName() string { return "photo" }

// PhotoAnalysis is the decoded shape of Photo.Metadata.
type PhotoAnalysis struct {
	SalientRegions int      `json:"salient_regions"`
	IsVideo        bool     `json:"is_video"`
	Tags           []string `json:"tags"`
}

// Analysis decodes Metadata, returning zero values when absent or invalid.
func (p *Photo) Analysis() PhotoAnalysis {
	var a PhotoAnalysis
	if len(p.Metadata) == 0 {
		return a
	}
	_ = json.Unmarshal(p.Metadata, &a)
	return a
}
