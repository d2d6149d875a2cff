package routes

import (
	"github.com/gin-gonic/gin"

	"cipherstudio/controllers"
	"cipherstudio/middleware"
)

func RegisterProjectRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	projectController := controllers.NewProjectController(container.ProjectService)

	projects := rg.Group("/projects")
	projects.Use(middleware.AuthMiddleware(container.JWTSecret))
	{
		projects.POST("/", projectController.CreateProject)
		projects.GET("/", projectController.ListProjects)
		projects.GET("/:projectId", projectController.GetProject)
		projects.PUT("/:projectId", projectController.UpdateProject)
		projects.DELETE("/:projectId", projectController.DeleteProject)
	}
}
