package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/maintainly/api-go/controllers"
	"github.com/maintainly/api-go/middleware"
	"github.com/maintainly/api-go/services"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, workflow *services.Workflow, fanIn *services.FanIn) {
	// Initialize controllers
	authController := controllers.NewAuthController(db)
	propertyController := controllers.NewPropertyController(db)
	reportController := controllers.NewReportController(db, workflow)
	assignmentController := controllers.NewAssignmentController(db, workflow)
	uploadController := controllers.NewUploadController(db)
	notificationController := controllers.NewNotificationController(db, fanIn)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.POST("/login/google", authController.GoogleLogin)
		public.POST("/refresh-token", authController.RefreshToken)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/logout", authController.Logout)
		protected.GET("/profile", authController.GetProfile)
		protected.PUT("/profile", authController.UpdateProfile)

		SetupPropertyRoutes(protected, propertyController)
		SetupReportRoutes(protected, reportController)
		SetupAssignmentRoutes(protected, assignmentController)
		SetupUploadRoutes(protected, uploadController)
		SetupNotificationRoutes(protected, notificationController)
	}
}
