package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentAccepted  AssignmentStatus = "accepted"
	AssignmentRejected  AssignmentStatus = "rejected"
	AssignmentCompleted AssignmentStatus = "completed"
)

// Assignment tracks the contractor workflow for one report. A report has at
// most one assignment row; reassignment reuses the row and bumps
// ReassignmentCount. The count is only ever moved by a SQL-level increment.
type Assignment struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	ReportID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"report_id"`
	Report   MaintenanceReport `json:"-" gorm:"foreignKey:ReportID"`

	ContractorID *uuid.UUID `gorm:"type:uuid;index" json:"contractor_id"`
	LandlordID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"landlord_id"`

	Status            AssignmentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AssignedAt        *time.Time       `json:"assigned_at"`
	ResponseAt        *time.Time       `json:"response_at"`
	ReassignmentCount int              `gorm:"not null;default:0" json:"reassignment_count"`

	Responses    []ContractorResponse    `json:"responses,omitempty" gorm:"foreignKey:AssignmentID"`
	FinalReports []ContractorFinalReport `json:"final_reports,omitempty" gorm:"foreignKey:AssignmentID"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ContractorResponse is an append-only audit row, one per accept/reject
// event, kept across reassignments.
type ContractorResponse struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	AssignmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assignment_id"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null;index" json:"contractor_id"`
	Response     string    `gorm:"type:varchar(10);not null" json:"response"` // "accepted" or "rejected"
	Reason       string    `gorm:"type:text" json:"reason"`
}

func (r *ContractorResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ContractorFinalReport is the close-out text for a completed job. Upsert
// keyed on (assignment, contractor): re-submission replaces the text.
type ContractorFinalReport struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AssignmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_final_report_cycle" json:"assignment_id"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_final_report_cycle" json:"contractor_id"`
	ReportText   string    `gorm:"type:text;not null" json:"report_text"`
}

func (r *ContractorFinalReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
