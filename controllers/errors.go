package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"cipherstudio/services"
	"cipherstudio/utils"
)

// handleServiceError maps the service error taxonomy to HTTP statuses. Each
// error kind stays distinguishable to the caller; unknown errors become 500s.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "Resource not found")
	case errors.Is(err, services.ErrUnauthorized):
		utils.ForbiddenResponse(c, "You do not own this project")
	case errors.Is(err, services.ErrDuplicateName):
		utils.ConflictResponse(c, "A file or folder with this name already exists", err.Error())
	case errors.Is(err, services.ErrInvalidParent):
		utils.BadRequestResponse(c, "Invalid parent folder", err.Error())
	case errors.Is(err, services.ErrInvalidType):
		utils.BadRequestResponse(c, "Invalid request", err.Error())
	case errors.Is(err, services.ErrInvalidName):
		utils.BadRequestResponse(c, "Invalid name", err.Error())
	case errors.Is(err, services.ErrCascadeFailure):
		utils.LogError("cascade delete failed", err)
		utils.InternalServerErrorResponse(c, "Delete did not complete; re-fetch the tree before retrying", err.Error())
	default:
		utils.LogError("unhandled service error", err)
		utils.InternalServerErrorResponse(c, "Internal server error", err.Error())
	}
}
