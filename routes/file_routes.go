package routes

import (
	"github.com/gin-gonic/gin"

	"cipherstudio/controllers"
	"cipherstudio/middleware"
)

func RegisterFileRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	fileController := controllers.NewFileController(container.FileService)

	files := rg.Group("/files")
	files.Use(middleware.AuthMiddleware(container.JWTSecret))
	{
		// More specific routes first.
		files.GET("/project/:projectId", fileController.GetProjectFiles)
		files.GET("/project/:projectId/tree", fileController.GetProjectTree)
		files.GET("/project/:projectId/children", fileController.ListChildren)

		files.POST("/", fileController.CreateNode)
		files.GET("/:fileId", fileController.GetNode)
		files.PUT("/:fileId", fileController.UpdateNode)
		files.PATCH("/:fileId/rename", fileController.RenameNode)
		files.PATCH("/:fileId/move", fileController.MoveNode)
		files.DELETE("/:fileId", fileController.DeleteNode)
	}
}
