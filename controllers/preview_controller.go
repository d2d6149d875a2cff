package controllers

import (
	"github.com/gin-gonic/gin"

	"cipherstudio/middleware"
	"cipherstudio/services"
	"cipherstudio/utils"
)

type PreviewController struct {
	fileService *services.FileService
}

func NewPreviewController(fileService *services.FileService) *PreviewController {
	return &PreviewController{fileService: fileService}
}

// BuildVFS handles POST /preview/:projectId/vfs. The body optionally carries
// the unsaved editor buffer; its content overrides the persisted file at the
// matching path so the preview tracks keystrokes without a save round trip.
func (pc *PreviewController) BuildVFS(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		LivePath    string `json:"livePath"`
		LiveContent string `json:"liveContent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	vfs, err := pc.fileService.BuildProjectVFS(c.Request.Context(), userID, c.Param("projectId"), req.LivePath, req.LiveContent)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Virtual file system built successfully", vfs)
}
