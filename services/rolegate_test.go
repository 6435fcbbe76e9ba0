package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/maintainly/api-go/models"
	"github.com/maintainly/api-go/services"
)

func TestRoleGate(t *testing.T) {
	gate := services.RoleGate{}

	cases := []struct {
		role    models.Role
		action  services.Action
		allowed bool
	}{
		{models.RoleTenant, services.ActionReportCreate, true},
		{models.RoleLandlord, services.ActionReportCreate, false},
		{models.RoleHelpdesk, services.ActionReportCreate, false},

		{models.RoleTenant, services.ActionReportView, true},
		{models.RoleLandlord, services.ActionReportView, true},
		{models.RoleHelpdesk, services.ActionReportView, true},
		{models.RoleContractor, services.ActionReportView, true},

		{models.RoleLandlord, services.ActionReportApprove, true},
		{models.RoleHelpdesk, services.ActionReportApprove, true},
		{models.RoleTenant, services.ActionReportApprove, false},
		{models.RoleContractor, services.ActionReportApprove, false},

		{models.RoleLandlord, services.ActionAssignmentAssign, true},
		{models.RoleHelpdesk, services.ActionAssignmentAssign, true},
		{models.RoleTenant, services.ActionAssignmentAssign, false},
		{models.RoleContractor, services.ActionAssignmentAssign, false},

		{models.RoleContractor, services.ActionAssignmentRespond, true},
		{models.RoleHelpdesk, services.ActionAssignmentRespond, false},

		{models.RoleContractor, services.ActionFinalReport, true},
		{models.RoleLandlord, services.ActionFinalReport, false},

		{models.RoleLandlord, services.ActionPropertyManage, true},
		{models.RoleTenant, services.ActionPropertyManage, false},
	}

	for _, tc := range cases {
		err := gate.Authorize(services.Actor{ID: uuid.New(), Role: tc.role}, tc.action)
		if tc.allowed {
			assert.NoError(t, err, "%s should be allowed to %s", tc.role, tc.action)
		} else {
			assert.ErrorIs(t, err, services.ErrUnauthorized, "%s should not be allowed to %s", tc.role, tc.action)
		}
	}
}

func TestRoleGateUnknownAction(t *testing.T) {
	gate := services.RoleGate{}
	err := gate.Authorize(services.Actor{ID: uuid.New(), Role: models.RoleHelpdesk}, services.Action("report.delete"))
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}
