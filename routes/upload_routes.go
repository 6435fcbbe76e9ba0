package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/maintainly/api-go/controllers"
)

func SetupUploadRoutes(protected *gin.RouterGroup, uploadController *controllers.UploadController) {
	uploads := protected.Group("/uploads")
	{
		uploads.POST("/presign", uploadController.GetPresignedURL)
		uploads.POST("/confirm", uploadController.ConfirmAttachment)
	}

	protected.GET("/attachments/:id/url", uploadController.ResolveAttachment)
}
