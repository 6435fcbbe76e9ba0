package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Property struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	LandlordID uuid.UUID `gorm:"type:uuid;not null;index" json:"landlord_id"`
	Landlord   Profile   `json:"landlord" gorm:"foreignKey:LandlordID"`

	Name        string `gorm:"size:120;not null" json:"name"`
	AddressLine string `gorm:"not null" json:"address_line"`
	City        string `gorm:"size:80" json:"city"`
	Postcode    string `gorm:"size:20" json:"postcode"`

	Reports []MaintenanceReport `json:"reports,omitempty" gorm:"foreignKey:PropertyID"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
