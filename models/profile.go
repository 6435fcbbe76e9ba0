package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleTenant     Role = "tenant"
	RoleLandlord   Role = "landlord"
	RoleHelpdesk   Role = "helpdesk"
	RoleContractor Role = "contractor"
)

// ValidRole reports whether s is one of the four signup roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleTenant, RoleLandlord, RoleHelpdesk, RoleContractor:
		return true
	}
	return false
}

type Profile struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Email    string  `gorm:"unique;not null" json:"email"`
	Password string  `gorm:"not null" json:"-"` // Don't expose password in JSON
	FullName string  `gorm:"size:120" json:"full_name"`
	Phone    *string `gorm:"unique" json:"phone"`

	// Role is fixed at signup time. Logins never rewrite it; a changed role
	// takes effect on the next token issued after the change.
	Role Role `gorm:"type:varchar(20);not null" json:"role"`

	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:ProfileID"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
