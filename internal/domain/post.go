package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostStatusPending   = "pending"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

const (
	CaptionSourceGenerated = "generated"
	CaptionSourceFallback  = "fallback"
)

const (
	FormatStatic   = "static"
	FormatCarousel = "carousel"
	FormatReel     = "reel"
)

// Post is a publish attempt for a photo. Its existence marks the photo as
// posted for inventory purposes.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PersonaID uuid.UUID `gorm:"type:uuid;not null;index" json:"persona_id"`
	PhotoID   uuid.UUID `gorm:"type:uuid;not null;index" json:"photo_id"`

	Caption       string `gorm:"type:text" json:"caption"`
	CaptionSource string `gorm:"type:text" json:"caption_source"`
	Format        string `gorm:"type:text;not null;default:static" json:"format"`
	Status        string `gorm:"type:text;not null;default:pending;index" json:"status"`

	// ProviderPostID is set by the publisher on success.
	ProviderPostID *string    `gorm:"column:provider_post_id;type:text" json:"provider_post_id,omitempty"`
	ScheduledFor   *time.Time `gorm:"column:scheduled_for" json:"scheduled_for,omitempty"`
	PostedAt       *time.Time `gorm:"column:posted_at" json:"posted_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Post) TableName() string { return "post" }
