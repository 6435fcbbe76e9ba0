package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maintainly/api-go/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Workflow owns every assignment status transition. Transitions are applied
// with conditional updates (WHERE status = expected), so a request whose
// precondition no longer holds fails with ErrInvalidTransition instead of
// overwriting a concurrent writer.
//
// The transition table:
//
//	pending -> assigned -> accepted -> completed
//	                    -> rejected  (terminal for that cycle; the report
//	                                  may be reassigned, which bumps
//	                                  reassignment_count and returns to
//	                                  assigned)
type Workflow struct {
	DB   *gorm.DB
	Bus  Bus
	Gate RoleGate
}

func NewWorkflow(db *gorm.DB, bus Bus) *Workflow {
	return &Workflow{DB: db, Bus: bus}
}

// reassignable are the statuses Assign may move from. accepted and completed
// mean the job is locked by (or done by) a contractor and cannot be handed
// to another one.
var reassignable = []models.AssignmentStatus{
	models.AssignmentPending,
	models.AssignmentAssigned,
	models.AssignmentRejected,
}

// Assign hands a report's job to a contractor, creating the assignment row
// on first call and reusing it on reassignment. ReassignmentCount is bumped
// with a SQL expression so concurrent assigns never lose increments.
func (w *Workflow) Assign(ctx context.Context, reportID, contractorID uuid.UUID, actor Actor) (*models.Assignment, error) {
	if err := w.Gate.Authorize(actor, ActionAssignmentAssign); err != nil {
		return nil, err
	}

	db := w.DB.WithContext(ctx)

	var report models.MaintenanceReport
	if err := db.Preload("Property").First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: report %s", ErrNotFound, reportID)
		}
		return nil, wrapStoreErr(err)
	}
	// A landlord may only assign on their own properties.
	if actor.Role == models.RoleLandlord && report.Property.LandlordID != actor.ID {
		return nil, fmt.Errorf("%w: not the property owner", ErrUnauthorized)
	}

	var contractor models.Profile
	if err := db.First(&contractor, "id = ? AND role = ?", contractorID, models.RoleContractor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contractor %s", ErrNotFound, contractorID)
		}
		return nil, wrapStoreErr(err)
	}

	now := time.Now().UTC()
	var out models.Assignment
	err := db.Transaction(func(tx *gorm.DB) error {
		// Insert-or-nothing on the report unique index: two concurrent
		// first-ever assigns both reach here, one inserts, the loser falls
		// through to the reassignment update instead of a duplicate-key
		// failure.
		a := models.Assignment{
			ReportID:          reportID,
			ContractorID:      &contractorID,
			LandlordID:        report.Property.LandlordID,
			Status:            models.AssignmentAssigned,
			AssignedAt:        &now,
			ReassignmentCount: 1,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_id"}},
			DoNothing: true,
		}).Create(&a)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			upd := tx.Model(&models.Assignment{}).
				Where("report_id = ? AND status IN ?", reportID, reassignable).
				Updates(map[string]interface{}{
					"contractor_id":      contractorID,
					"status":             models.AssignmentAssigned,
					"assigned_at":        now,
					"response_at":        nil,
					"reassignment_count": gorm.Expr("reassignment_count + 1"),
				})
			if upd.Error != nil {
				return upd.Error
			}
			if upd.RowsAffected == 0 {
				var cur models.Assignment
				if err := tx.First(&cur, "report_id = ?", reportID).Error; err != nil {
					return err
				}
				return fmt.Errorf("%w: assignment %s is %s", ErrInvalidTransition, cur.ID, cur.Status)
			}
		}
		return tx.First(&out, "report_id = ?", reportID).Error
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, wrapStoreErr(err)
	}

	w.publish(ctx, NewEvent(StreamAssignments, "update", out.ID.String()))
	return &out, nil
}

// Respond records the assigned contractor's accept/reject decision. Only the
// contractor currently on the assignment may respond, and only while it is
// in assigned.
func (w *Workflow) Respond(ctx context.Context, assignmentID uuid.UUID, actor Actor, decision, reason string) (*models.Assignment, error) {
	if err := w.Gate.Authorize(actor, ActionAssignmentRespond); err != nil {
		return nil, err
	}
	if decision != string(models.AssignmentAccepted) && decision != string(models.AssignmentRejected) {
		return nil, fmt.Errorf("%w: decision must be accepted or rejected", ErrValidation)
	}

	db := w.DB.WithContext(ctx)

	var a models.Assignment
	if err := db.First(&a, "id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: assignment %s", ErrNotFound, assignmentID)
		}
		return nil, wrapStoreErr(err)
	}
	if a.ContractorID == nil || *a.ContractorID != actor.ID {
		return nil, fmt.Errorf("%w: not the assigned contractor", ErrUnauthorized)
	}

	now := time.Now().UTC()
	var out models.Assignment
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Assignment{}).
			Where("id = ? AND status = ? AND contractor_id = ?", assignmentID, models.AssignmentAssigned, actor.ID).
			Updates(map[string]interface{}{
				"status":      decision,
				"response_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: assignment %s is %s", ErrInvalidTransition, assignmentID, a.Status)
		}
		// Audit trail row survives reassignment.
		resp := models.ContractorResponse{
			AssignmentID: assignmentID,
			ContractorID: actor.ID,
			Response:     decision,
			Reason:       reason,
		}
		if err := tx.Create(&resp).Error; err != nil {
			return err
		}
		return tx.First(&out, "id = ?", assignmentID).Error
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, wrapStoreErr(err)
	}

	w.publish(ctx, NewEvent(StreamContractorResponses, "insert", assignmentID.String()))
	return &out, nil
}

// SubmitFinalReport stores the contractor's close-out text. First submission
// from accepted completes the assignment; re-submission from completed just
// replaces the text (upsert on assignment+contractor), so retries are safe.
func (w *Workflow) SubmitFinalReport(ctx context.Context, assignmentID uuid.UUID, actor Actor, text string) (*models.ContractorFinalReport, error) {
	if err := w.Gate.Authorize(actor, ActionFinalReport); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: report text is required", ErrValidation)
	}

	db := w.DB.WithContext(ctx)

	var a models.Assignment
	if err := db.First(&a, "id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: assignment %s", ErrNotFound, assignmentID)
		}
		return nil, wrapStoreErr(err)
	}
	if a.ContractorID == nil || *a.ContractorID != actor.ID {
		return nil, fmt.Errorf("%w: not the assigned contractor", ErrUnauthorized)
	}
	if a.Status != models.AssignmentAccepted && a.Status != models.AssignmentCompleted {
		return nil, fmt.Errorf("%w: assignment %s is %s", ErrInvalidTransition, assignmentID, a.Status)
	}

	report := models.ContractorFinalReport{
		AssignmentID: assignmentID,
		ContractorID: actor.ID,
		ReportText:   text,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "contractor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"report_text", "updated_at"}),
		}).Create(&report).Error; err != nil {
			return err
		}
		if a.Status == models.AssignmentAccepted {
			res := tx.Model(&models.Assignment{}).
				Where("id = ? AND status = ?", assignmentID, models.AssignmentAccepted).
				Update("status", models.AssignmentCompleted)
			if res.Error != nil {
				return res.Error
			}
			// Zero rows here means a concurrent submission already
			// completed it, which is the state we wanted anyway.
		}
		return tx.First(&report, "assignment_id = ? AND contractor_id = ?", assignmentID, actor.ID).Error
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	w.publish(ctx, NewEvent(StreamFinalReports, "update", assignmentID.String()))
	return &report, nil
}

// reportFlow maps a target report status to the status it must move from.
var reportFlow = map[models.ReportStatus]models.ReportStatus{
	models.ReportWorking: models.ReportPending,
	models.ReportFixed:   models.ReportWorking,
}

// ApproveReport advances a report's own status through the landlord/helpdesk
// approval flow: pending -> working -> fixed.
func (w *Workflow) ApproveReport(ctx context.Context, reportID uuid.UUID, actor Actor, target models.ReportStatus) (*models.MaintenanceReport, error) {
	if err := w.Gate.Authorize(actor, ActionReportApprove); err != nil {
		return nil, err
	}
	from, ok := reportFlow[target]
	if !ok {
		return nil, fmt.Errorf("%w: cannot approve to %s", ErrValidation, target)
	}

	db := w.DB.WithContext(ctx)

	var report models.MaintenanceReport
	if err := db.Preload("Property").First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: report %s", ErrNotFound, reportID)
		}
		return nil, wrapStoreErr(err)
	}
	if actor.Role == models.RoleLandlord && report.Property.LandlordID != actor.ID {
		return nil, fmt.Errorf("%w: not the property owner", ErrUnauthorized)
	}

	res := db.Model(&models.MaintenanceReport{}).
		Where("id = ? AND status = ?", reportID, from).
		Update("status", target)
	if res.Error != nil {
		return nil, wrapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: report %s is %s", ErrInvalidTransition, reportID, report.Status)
	}

	report.Status = target
	w.publish(ctx, NewEvent(StreamReportStatus, "update", reportID.String()))
	return &report, nil
}

func (w *Workflow) publish(ctx context.Context, ev Event) {
	if w.Bus == nil {
		return
	}
	if err := w.Bus.Publish(ctx, ev); err != nil {
		log.Printf("failed to publish %s event for %s: %v", ev.Stream, ev.RecordID, err)
	}
}
