package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/maintainly/api-go/controllers"
)

func SetupReportRoutes(protected *gin.RouterGroup, reportController *controllers.ReportController) {
	reports := protected.Group("/reports")
	{
		reports.POST("", reportController.CreateReport)
		reports.GET("", reportController.ListReports)
		reports.GET("/:id", reportController.GetReport)
		reports.PATCH("/:id/status", reportController.ApproveReport)
	}
}
