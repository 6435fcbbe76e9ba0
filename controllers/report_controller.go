package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maintainly/api-go/models"
	"github.com/maintainly/api-go/services"
	"gorm.io/gorm"
)

type ReportController struct {
	DB       *gorm.DB
	Workflow *services.Workflow
	Gate     services.RoleGate
}

func NewReportController(db *gorm.DB, workflow *services.Workflow) *ReportController {
	return &ReportController{DB: db, Workflow: workflow}
}

func (rc *ReportController) CreateReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	if err := rc.Gate.Authorize(actor, services.ActionReportCreate); err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		PropertyID       string   `json:"propertyId" binding:"required"`
		Title            string   `json:"title" binding:"required"`
		Description      string   `json:"description"`
		Category         string   `json:"category" binding:"required"`
		Location         string   `json:"location"`
		Urgency          string   `json:"urgency" binding:"required"`
		Latitude         *float64 `json:"latitude"`
		Longitude        *float64 `json:"longitude"`
		FormattedAddress *string  `json:"formattedAddress"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if !models.ValidCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category", "success": false})
		return
	}
	if !models.ValidUrgency(input.Urgency) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown urgency", "success": false})
		return
	}
	propertyID, err := uuid.Parse(input.PropertyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property id", "success": false})
		return
	}

	var property models.Property
	if err := rc.DB.First(&property, "id = ?", propertyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found", "success": false})
		return
	}

	report := models.MaintenanceReport{
		PropertyID:       propertyID,
		TenantID:         actor.ID,
		Title:            input.Title,
		Description:      input.Description,
		Category:         models.ReportCategory(input.Category),
		Location:         input.Location,
		Urgency:          models.Urgency(input.Urgency),
		Status:           models.ReportPending,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		FormattedAddress: input.FormattedAddress,
	}
	if err := rc.DB.Create(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create report", "success": false})
		return
	}

	// Attachments are uploaded and confirmed as separate steps after this
	// returns; a failed upload leaves the report intact with a partial set.
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": report})
}

func (rc *ReportController) ListReports(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	q := rc.DB.Preload("Attachments").Preload("Assignment").Order("created_at DESC")
	switch actor.Role {
	case models.RoleTenant:
		q = q.Where("tenant_id = ?", actor.ID)
	case models.RoleLandlord:
		q = q.Joins("JOIN properties ON properties.id = maintenance_reports.property_id").
			Where("properties.landlord_id = ?", actor.ID)
	case models.RoleContractor:
		q = q.Joins("JOIN assignments ON assignments.report_id = maintenance_reports.id").
			Where("assignments.contractor_id = ?", actor.ID)
	case models.RoleHelpdesk:
		// Helpdesk triages everything.
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("maintenance_reports.status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("maintenance_reports.category = ?", category)
	}

	var reports []models.MaintenanceReport
	if err := q.Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list reports", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": reports})
}

func (rc *ReportController) GetReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	if err := rc.Gate.Authorize(actor, services.ActionReportView); err != nil {
		respondError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id", "success": false})
		return
	}

	var report models.MaintenanceReport
	if err := rc.DB.
		Preload("Property").
		Preload("Tenant").
		Preload("Attachments").
		Preload("Assignment").
		Preload("Assignment.Responses").
		Preload("Assignment.FinalReports").
		First(&report, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found", "success": false})
		return
	}

	if !canViewReport(actor, &report) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// ApproveReport advances a report along pending -> working -> fixed.
func (rc *ReportController) ApproveReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id", "success": false})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	report, err := rc.Workflow.ApproveReport(ctx, id, actor, models.ReportStatus(input.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}
