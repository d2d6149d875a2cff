package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"cipherstudio/middleware"
	"cipherstudio/services"
	"cipherstudio/utils"
)

type AssetController struct {
	storageService *services.StorageService
}

func NewAssetController(storageService *services.StorageService) *AssetController {
	return &AssetController{storageService: storageService}
}

// UploadAsset handles POST /assets/:projectId — multipart upload of a binary
// asset into object storage. The returned storage key can then be attached to
// a FileNode; the tree never holds the bytes.
func (ac *AssetController) UploadAsset(c *gin.Context) {
	if _, ok := middleware.RequesterID(c); !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file in request", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to read uploaded file", err.Error())
		return
	}
	defer file.Close()

	result, err := ac.storageService.UploadAsset(c.Request.Context(), c.Param("projectId"), fileHeader.Filename, file)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to upload asset", err.Error())
		return
	}

	utils.CreatedResponse(c, "Asset uploaded successfully", result)
}

// GetAssetURL handles POST /assets/url — returns a time-limited signed
// download URL for a stored asset.
func (ac *AssetController) GetAssetURL(c *gin.Context) {
	if _, ok := middleware.RequesterID(c); !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	url, err := ac.storageService.GetSignedURL(c.Request.Context(), req.Key, 1*time.Hour)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to generate signed URL", err.Error())
		return
	}

	utils.SuccessResponse(c, "Signed URL generated successfully", gin.H{"url": url})
}

// DeleteAsset handles DELETE /assets
func (ac *AssetController) DeleteAsset(c *gin.Context) {
	if _, ok := middleware.RequesterID(c); !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	if err := ac.storageService.DeleteAsset(c.Request.Context(), req.Key); err != nil {
		utils.InternalServerErrorResponse(c, "Failed to delete asset", err.Error())
		return
	}

	utils.SuccessResponse(c, "Asset deleted successfully", nil)
}

// CheckAsset handles POST /assets/exists
func (ac *AssetController) CheckAsset(c *gin.Context) {
	if _, ok := middleware.RequesterID(c); !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	exists, err := ac.storageService.AssetExists(c.Request.Context(), req.Key)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to check asset", err.Error())
		return
	}

	utils.SuccessResponse(c, "Asset checked", gin.H{"exists": exists})
}

// AttachAsset handles PATCH /assets/attach/:fileId — records a storage key on
// a file node after the ownership check.
func (ac *AssetController) AttachAsset(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	if err := ac.storageService.AttachAssetToNode(c.Request.Context(), userID, c.Param("fileId"), req.Key); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Asset attached successfully", nil)
}
