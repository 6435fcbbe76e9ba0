package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/maintainly/api-go/controllers"
)

func SetupNotificationRoutes(protected *gin.RouterGroup, notificationController *controllers.NotificationController) {
	notifications := protected.Group("/notifications")
	{
		notifications.GET("/stream", notificationController.Stream)
		notifications.GET("/preferences", notificationController.GetPreferences)
		notifications.PUT("/preferences", notificationController.UpdatePreferences)
	}
}
