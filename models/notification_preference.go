package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// NotificationPreference controls which change streams a profile gets alerts
// for. A missing row means enabled for all streams.
type NotificationPreference struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProfileID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"profile_id"`
	Enabled   bool           `gorm:"not null;default:true" json:"enabled"`
	Streams   pq.StringArray `gorm:"type:text[]" json:"streams"` // empty = all streams
}

func (n *NotificationPreference) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
