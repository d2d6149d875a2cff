package routes

import (
	"github.com/gin-gonic/gin"

	"cipherstudio/controllers"
	"cipherstudio/middleware"
)

func RegisterAssetRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	assetController := controllers.NewAssetController(container.StorageService)

	assets := rg.Group("/assets")
	assets.Use(middleware.AuthMiddleware(container.JWTSecret))
	{
		assets.POST("/:projectId", assetController.UploadAsset)
		assets.POST("/url", assetController.GetAssetURL)
		assets.POST("/exists", assetController.CheckAsset)
		assets.PATCH("/attach/:fileId", assetController.AttachAsset)
		assets.DELETE("/", assetController.DeleteAsset)
	}
}
