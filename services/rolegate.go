package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/maintainly/api-go/models"
)

// Actor is the authenticated identity a controller resolved from the request
// token. Operations take it explicitly; nothing reads ambient session state.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

type Action string

const (
	ActionReportCreate      Action = "report.create"
	ActionReportView        Action = "report.view"
	ActionReportApprove     Action = "report.approve"
	ActionPropertyManage    Action = "property.manage"
	ActionAssignmentAssign  Action = "assignment.assign"
	ActionAssignmentRespond Action = "assignment.respond"
	ActionFinalReport       Action = "assignment.final_report"
)

var allowedRoles = map[Action][]models.Role{
	ActionReportCreate: {models.RoleTenant},
	// Every role may view reports; which reports is an instance-level
	// ownership check done by the handler.
	ActionReportView:        {models.RoleTenant, models.RoleLandlord, models.RoleHelpdesk, models.RoleContractor},
	ActionReportApprove:     {models.RoleLandlord, models.RoleHelpdesk},
	ActionPropertyManage:    {models.RoleLandlord},
	ActionAssignmentAssign:  {models.RoleLandlord, models.RoleHelpdesk},
	ActionAssignmentRespond: {models.RoleContractor},
	ActionFinalReport:       {models.RoleContractor},
}

// RoleGate maps actors to permitted actions. Denial is a plain
// ErrUnauthorized so callers redirect instead of crashing; instance-level
// ownership (is this the assigned contractor, does the tenant own the
// report) is checked by the operation itself.
type RoleGate struct{}

func (RoleGate) Authorize(actor Actor, action Action) error {
	roles, ok := allowedRoles[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %s", ErrUnauthorized, action)
	}
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s may not %s", ErrUnauthorized, actor.Role, action)
}
