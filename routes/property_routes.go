package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/maintainly/api-go/controllers"
)

func SetupPropertyRoutes(protected *gin.RouterGroup, propertyController *controllers.PropertyController) {
	properties := protected.Group("/properties")
	{
		properties.POST("", propertyController.CreateProperty)
		properties.GET("", propertyController.ListProperties)
		properties.GET("/:id", propertyController.GetProperty)
	}
}
