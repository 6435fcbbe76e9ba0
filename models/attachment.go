package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is media uploaded against a report. Rows hold the storage key,
// never a public URL; reads go through a presigned URL.
type Attachment struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReportID uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`

	FileName   string `gorm:"size:255;not null" json:"file_name"`
	StorageKey string `gorm:"not null" json:"storage_key"`
	FileType   string `gorm:"size:10;not null" json:"file_type"` // "image" or "video"
	FileSize   int64  `json:"file_size"`
	Duration   int    `json:"duration"` // seconds, video only
	OrderIndex int    `gorm:"default:0" json:"order_index"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
