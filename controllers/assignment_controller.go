package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maintainly/api-go/models"
	"github.com/maintainly/api-go/services"
	"gorm.io/gorm"
)

type AssignmentController struct {
	DB       *gorm.DB
	Workflow *services.Workflow
}

func NewAssignmentController(db *gorm.DB, workflow *services.Workflow) *AssignmentController {
	return &AssignmentController{DB: db, Workflow: workflow}
}

// AssignContractor hands a report's job to a contractor (helpdesk/landlord).
func (ac *AssignmentController) AssignContractor(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id", "success": false})
		return
	}

	var input struct {
		ContractorID string `json:"contractorId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}
	contractorID, err := uuid.Parse(input.ContractorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contractor id", "success": false})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	assignment, err := ac.Workflow.Assign(ctx, reportID, contractorID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": assignment})
}

// Respond records the assigned contractor's accept or reject decision.
func (ac *AssignmentController) Respond(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment id", "success": false})
		return
	}

	var input struct {
		Decision string `json:"decision" binding:"required,oneof=accepted rejected"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	assignment, err := ac.Workflow.Respond(ctx, assignmentID, actor, input.Decision, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": assignment})
}

// SubmitFinalReport stores the close-out text, completing the assignment on
// first submission. Re-submission replaces the text.
func (ac *AssignmentController) SubmitFinalReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment id", "success": false})
		return
	}

	var input struct {
		ReportText string `json:"reportText" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	finalReport, err := ac.Workflow.SubmitFinalReport(ctx, assignmentID, actor, input.ReportText)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": finalReport})
}

// ListAssignments returns the caller's slice of the assignment table:
// contractors see their own jobs, landlords their properties' jobs,
// helpdesk everything.
func (ac *AssignmentController) ListAssignments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	q := ac.DB.Preload("Responses").Preload("FinalReports").Order("updated_at DESC")
	switch actor.Role {
	case models.RoleContractor:
		q = q.Where("contractor_id = ?", actor.ID)
	case models.RoleLandlord:
		q = q.Where("landlord_id = ?", actor.ID)
	case models.RoleHelpdesk:
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var assignments []models.Assignment
	if err := q.Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list assignments", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": assignments})
}

// ListContractors backs the assign dialog: helpdesk and landlords pick a
// contractor from this list.
func (ac *AssignmentController) ListContractors(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	if actor.Role != models.RoleHelpdesk && actor.Role != models.RoleLandlord {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	var contractors []models.Profile
	if err := ac.DB.Where("role = ?", models.RoleContractor).Order("full_name").Find(&contractors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list contractors", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": contractors})
}

// GetAssignment returns one assignment with its audit trail, scoped to the
// parties on it: assigned contractor, landlord, filing tenant, or helpdesk.
func (ac *AssignmentController) GetAssignment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment id", "success": false})
		return
	}

	var assignment models.Assignment
	if err := ac.DB.Preload("Report").Preload("Responses").Preload("FinalReports").
		First(&assignment, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found", "success": false})
		return
	}

	if !canViewAssignment(actor, &assignment) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": assignment})
}
