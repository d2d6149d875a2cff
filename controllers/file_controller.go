package controllers

import (
	"github.com/gin-gonic/gin"

	"cipherstudio/middleware"
	"cipherstudio/services"
	"cipherstudio/utils"
)

type FileController struct {
	fileService *services.FileService
}

func NewFileController(fileService *services.FileService) *FileController {
	return &FileController{fileService: fileService}
}

// CreateNode handles POST /files
func (fc *FileController) CreateNode(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		ProjectID string  `json:"projectId" binding:"required"`
		ParentID  *string `json:"parentId"`
		Name      string  `json:"name" binding:"required"`
		Type      string  `json:"type" binding:"required"`
		Content   string  `json:"content"`
		Language  string  `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}
	if err := utils.ValidateNodeName(req.Name); err != nil {
		utils.BadRequestResponse(c, "Invalid name", err.Error())
		return
	}

	node, err := fc.fileService.CreateNode(c.Request.Context(), userID, services.CreateNodeRequest{
		ProjectID: req.ProjectID,
		ParentID:  req.ParentID,
		Name:      req.Name,
		Type:      req.Type,
		Content:   req.Content,
		Language:  req.Language,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "File/folder created successfully", node)
}

// GetNode handles GET /files/:fileId
func (fc *FileController) GetNode(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	node, err := fc.fileService.GetNode(c.Request.Context(), userID, c.Param("fileId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File retrieved successfully", node)
}

// UpdateNode handles PUT /files/:fileId — rename and/or content update, the
// same shape the editor uses for both.
func (fc *FileController) UpdateNode(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		Name    *string `json:"name"`
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	fileID := c.Param("fileId")
	node, err := fc.fileService.GetNode(c.Request.Context(), userID, fileID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if req.Name != nil {
		if err := utils.ValidateNodeName(*req.Name); err != nil {
			utils.BadRequestResponse(c, "Invalid name", err.Error())
			return
		}
		node, err = fc.fileService.RenameNode(c.Request.Context(), userID, fileID, *req.Name)
		if err != nil {
			handleServiceError(c, err)
			return
		}
	}

	if req.Content != nil {
		node, err = fc.fileService.UpdateContent(c.Request.Context(), userID, fileID, *req.Content)
		if err != nil {
			handleServiceError(c, err)
			return
		}
	}

	utils.SuccessResponse(c, "File updated successfully", node)
}

// RenameNode handles PATCH /files/:fileId/rename
func (fc *FileController) RenameNode(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}
	if err := utils.ValidateNodeName(req.Name); err != nil {
		utils.BadRequestResponse(c, "Invalid name", err.Error())
		return
	}

	node, err := fc.fileService.RenameNode(c.Request.Context(), userID, c.Param("fileId"), req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File renamed successfully", node)
}

// MoveNode handles PATCH /files/:fileId/move
func (fc *FileController) MoveNode(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		ParentID string `json:"parentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	node, err := fc.fileService.MoveNode(c.Request.Context(), userID, c.Param("fileId"), req.ParentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File moved successfully", node)
}

// DeleteNode handles DELETE /files/:fileId — folders cascade.
func (fc *FileController) DeleteNode(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := fc.fileService.DeleteNode(c.Request.Context(), userID, c.Param("fileId")); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File/folder deleted successfully", nil)
}

// GetProjectFiles handles GET /files/project/:projectId
func (fc *FileController) GetProjectFiles(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	files, err := fc.fileService.GetProjectFiles(c.Request.Context(), userID, c.Param("projectId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Files retrieved successfully", files)
}

// ListChildren handles GET /files/project/:projectId/children — direct
// children of the parentId query param, or the root level when it is absent.
func (fc *FileController) ListChildren(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var parentID *string
	if raw, exists := c.GetQuery("parentId"); exists && raw != "" {
		parentID = &raw
	}

	children, err := fc.fileService.ListChildren(c.Request.Context(), userID, c.Param("projectId"), parentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Children retrieved successfully", children)
}

// GetProjectTree handles GET /files/project/:projectId/tree
func (fc *FileController) GetProjectTree(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	tree, err := fc.fileService.GetTree(c.Request.Context(), userID, c.Param("projectId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Tree retrieved successfully", tree)
}
