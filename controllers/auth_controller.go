package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cipherstudio/services"
	"cipherstudio/utils"
)

type AuthController struct {
	authService *services.AuthService
	jwtSecret   string
}

func NewAuthController(authService *services.AuthService, jwtSecret string) *AuthController {
	return &AuthController{authService: authService, jwtSecret: jwtSecret}
}

// GoogleLogin handles GET /auth/google — issues the redirect to Google.
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	state, err := ac.authService.GenerateState()
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to start login", err.Error())
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, ac.authService.GetGoogleAuthURL(state))
}

// GoogleCallback handles GET /auth/google/callback
func (ac *AuthController) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")

	if state == "" || !ac.authService.ValidateState(state) {
		utils.BadRequestResponse(c, "Invalid OAuth state", nil)
		return
	}
	if code == "" {
		utils.BadRequestResponse(c, "Missing authorization code", nil)
		return
	}

	user, token, err := ac.authService.HandleGoogleCallback(code)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotVerified) {
			utils.ForbiddenResponse(c, "Email not verified with Google")
			return
		}
		utils.InternalServerErrorResponse(c, "Login failed", err.Error())
		return
	}

	utils.SuccessResponse(c, "Login successful", gin.H{
		"user":  user,
		"token": token,
	})
}

// LoginWithToken handles POST /auth/login — client-side Google sign-in flow
// where the SPA already holds the ID token.
func (ac *AuthController) LoginWithToken(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	user, token, err := ac.authService.LoginWithIDToken(req.IDToken)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotVerified) {
			utils.ForbiddenResponse(c, "Email not verified with Google")
			return
		}
		utils.UnauthorizedResponse(c, "Login failed")
		return
	}

	utils.SuccessResponse(c, "Login successful", gin.H{
		"user":  user,
		"token": token,
	})
}

// Me handles GET /auth/me — returns the authenticated user's profile.
func (ac *AuthController) Me(c *gin.Context) {
	userIDStr, exists := c.Get("userIdStr")
	if !exists {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	user, err := ac.authService.GetUserProfile(userIDStr.(string))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.NotFoundResponse(c, "User not found")
			return
		}
		utils.InternalServerErrorResponse(c, "Failed to fetch profile", err.Error())
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", user)
}

// RefreshToken handles POST /auth/refresh — reissues a near-expiry JWT.
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	token, err := utils.RefreshJWTToken(req.Token, ac.jwtSecret, 24)
	if err != nil {
		utils.UnauthorizedResponse(c, "Token refresh failed")
		return
	}

	utils.SuccessResponse(c, "Token refreshed successfully", gin.H{"token": token})
}
