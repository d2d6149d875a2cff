package routes

import (
	"github.com/gin-gonic/gin"

	"cipherstudio/controllers"
	"cipherstudio/middleware"
)

func RegisterAuthRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	authController := controllers.NewAuthController(container.AuthService, container.JWTSecret)

	auth := rg.Group("/auth")
	{
		auth.GET("/google", authController.GoogleLogin)
		auth.GET("/google/callback", authController.GoogleCallback)
		auth.POST("/login", authController.LoginWithToken)
		auth.POST("/refresh", authController.RefreshToken)

		auth.GET("/me", middleware.AuthMiddleware(container.JWTSecret), authController.Me)
	}
}
