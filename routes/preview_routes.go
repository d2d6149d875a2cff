package routes

import (
	"github.com/gin-gonic/gin"

	"cipherstudio/controllers"
	"cipherstudio/middleware"
)

func RegisterPreviewRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	previewController := controllers.NewPreviewController(container.FileService)

	preview := rg.Group("/preview")
	preview.Use(middleware.AuthMiddleware(container.JWTSecret))
	{
		preview.POST("/:projectId/vfs", previewController.BuildVFS)
	}
}
