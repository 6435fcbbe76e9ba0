package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maintainly/api-go/models"
	"github.com/maintainly/api-go/services"
	"github.com/maintainly/api-go/utils"
)

// opTimeout bounds every record-store call made from a handler; expiry
// surfaces as ErrUpstreamTimeout instead of a hung request.
const opTimeout = 10 * time.Second

func opContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), opTimeout)
}

func actorFrom(c *gin.Context) (services.Actor, bool) {
	user := utils.GetUser(c)
	if user == nil {
		return services.Actor{}, false
	}
	return services.Actor{ID: user.UserID, Role: models.Role(user.Role)}, true
}

// canViewReport applies the same per-role scoping ListReports queries with:
// the filing tenant, the property's landlord, the assigned contractor, or
// helpdesk. The report must be loaded with Property and Assignment.
func canViewReport(actor services.Actor, report *models.MaintenanceReport) bool {
	switch actor.Role {
	case models.RoleHelpdesk:
		return true
	case models.RoleTenant:
		return report.TenantID == actor.ID
	case models.RoleLandlord:
		return report.Property.LandlordID == actor.ID
	case models.RoleContractor:
		return report.Assignment != nil && report.Assignment.ContractorID != nil &&
			*report.Assignment.ContractorID == actor.ID
	}
	return false
}

// canViewAssignment mirrors the ListAssignments scoping, plus the tenant who
// filed the underlying report. The assignment must be loaded with Report.
func canViewAssignment(actor services.Actor, a *models.Assignment) bool {
	switch actor.Role {
	case models.RoleHelpdesk:
		return true
	case models.RoleLandlord:
		return a.LandlordID == actor.ID
	case models.RoleContractor:
		return a.ContractorID != nil && *a.ContractorID == actor.ID
	case models.RoleTenant:
		return a.Report.TenantID == actor.ID
	}
	return false
}

type StandardResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

// respondError maps the service failure taxonomy onto HTTP statuses with a
// message derived from the failure kind, never a generic crash.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "success": false})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "success": false})
	case errors.Is(err, services.ErrUpstreamTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Upstream timed out, please retry", "success": false})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong", "success": false})
	}
}
