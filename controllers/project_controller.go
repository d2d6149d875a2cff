package controllers

import (
	"github.com/gin-gonic/gin"

	"cipherstudio/middleware"
	"cipherstudio/services"
	"cipherstudio/utils"
)

type ProjectController struct {
	projectService *services.ProjectService
}

func NewProjectController(projectService *services.ProjectService) *ProjectController {
	return &ProjectController{projectService: projectService}
}

// CreateProject handles POST /projects
func (pc *ProjectController) CreateProject(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Template    string `json:"template"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}
	if err := utils.ValidateProjectName(req.Name); err != nil {
		utils.BadRequestResponse(c, "Invalid project name", err.Error())
		return
	}

	project, rootFolderID, err := pc.projectService.CreateProject(c.Request.Context(), userID, req.Name, req.Description, req.Template)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Project created successfully", gin.H{
		"project":      project,
		"rootFolderId": rootFolderID,
	})
}

// ListProjects handles GET /projects
func (pc *ProjectController) ListProjects(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	projects, err := pc.projectService.ListProjects(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Projects retrieved successfully", projects)
}

// GetProject handles GET /projects/:projectId — project metadata plus nested
// tree plus flat files, the one-round-trip workspace load.
func (pc *ProjectController) GetProject(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	payload, err := pc.projectService.GetProject(c.Request.Context(), userID, c.Param("projectId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Project retrieved successfully", payload)
}

// UpdateProject handles PUT /projects/:projectId
func (pc *ProjectController) UpdateProject(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}
	if req.Name != "" {
		if err := utils.ValidateProjectName(req.Name); err != nil {
			utils.BadRequestResponse(c, "Invalid project name", err.Error())
			return
		}
	}

	project, err := pc.projectService.UpdateProject(c.Request.Context(), userID, c.Param("projectId"), req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Project updated successfully", project)
}

// DeleteProject handles DELETE /projects/:projectId — removes the project and
// every FileNode it contains.
func (pc *ProjectController) DeleteProject(c *gin.Context) {
	userID, ok := middleware.RequesterID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := pc.projectService.DeleteProject(c.Request.Context(), userID, c.Param("projectId")); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Project deleted successfully", nil)
}
