package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/maintainly/api-go/controllers"
)

func SetupAssignmentRoutes(protected *gin.RouterGroup, assignmentController *controllers.AssignmentController) {
	reports := protected.Group("/reports")
	{
		reports.POST("/:id/assign", assignmentController.AssignContractor)
	}

	assignments := protected.Group("/assignments")
	{
		assignments.GET("", assignmentController.ListAssignments)
		assignments.GET("/:id", assignmentController.GetAssignment)
		assignments.POST("/:id/respond", assignmentController.Respond)
		assignments.POST("/:id/final-report", assignmentController.SubmitFinalReport)
	}

	protected.GET("/contractors", assignmentController.ListContractors)
}
