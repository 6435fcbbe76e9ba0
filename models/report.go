package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportCategory string

const (
	CategoryPlumbing   ReportCategory = "plumbing"
	CategoryElectrical ReportCategory = "electrical"
	CategoryHVAC       ReportCategory = "hvac"
	CategoryAppliances ReportCategory = "appliances"
	CategoryStructural ReportCategory = "structural"
	CategoryPest       ReportCategory = "pest"
	CategorySecurity   ReportCategory = "security"
	CategoryWindows    ReportCategory = "windows"
	CategoryFlooring   ReportCategory = "flooring"
	CategoryOther      ReportCategory = "other"
)

type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

type ReportStatus string

const (
	ReportPending ReportStatus = "pending"
	ReportWorking ReportStatus = "working"
	ReportFixed   ReportStatus = "fixed"
)

// MaintenanceReport is a tenant-filed ticket for a property issue. Creator
// and property are fixed at creation; only status moves afterwards.
type MaintenanceReport struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	Property   Property  `json:"property" gorm:"foreignKey:PropertyID"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant     Profile   `json:"tenant" gorm:"foreignKey:TenantID"`

	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    ReportCategory `gorm:"type:varchar(20);not null" json:"category"`
	Location    string         `gorm:"size:200" json:"location"`
	Urgency     Urgency        `gorm:"type:varchar(20);not null;default:'low'" json:"urgency"`
	Status      ReportStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	Latitude         *float64 `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude        *float64 `gorm:"type:decimal(11,8)" json:"longitude"`
	FormattedAddress *string  `json:"formatted_address"`

	Attachments []Attachment `json:"attachments" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	Assignment  *Assignment  `json:"assignment,omitempty" gorm:"foreignKey:ReportID"`
}

func (r *MaintenanceReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func ValidCategory(s string) bool {
	switch ReportCategory(s) {
	case CategoryPlumbing, CategoryElectrical, CategoryHVAC, CategoryAppliances,
		CategoryStructural, CategoryPest, CategorySecurity, CategoryWindows,
		CategoryFlooring, CategoryOther:
		return true
	}
	return false
}

func ValidUrgency(s string) bool {
	switch Urgency(s) {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}
