package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/hungbu/projectmanager/internal/dto"
	apierrors "github.com/hungbu/projectmanager/internal/errors"
	"github.com/hungbu/projectmanager/internal/middleware"
	"github.com/hungbu/projectmanager/internal/models"
	"github.com/hungbu/projectmanager/internal/services"
	"github.com/hungbu/projectmanager/internal/utils"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns projects the current user owns or is a member of.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	projects, total, err := h.projectService.ListProjects(userID, params)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
		"page":     params.Page,
		"limit":    params.Limit,
		"total":    total,
	})
}

// CreateProject creates a project owned by the current user. The owner is
// taken from the authenticated identity, never from the payload.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProjectRequest struct {
		Name        string               `json:"name" binding:"required,max=255"`
		Description string               `json:"description"`
		Status      models.ProjectStatus `json:"status" binding:"omitempty,oneof=active completed archived"`
		StartDate   *time.Time           `json:"start_date"`
		EndDate     *time.Time           `json:"end_date"`
		Color       string               `json:"color" binding:"omitempty,max=16"`
	}

	var req CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Color:       req.Color,
		OwnerID:     userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// GetProject returns a project within the current user's read scope.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := idParam(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(userID, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject updates a project the current user owns.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := idParam(c)
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name        *string               `json:"name" binding:"omitempty,max=255"`
		Description *string               `json:"description"`
		Status      *models.ProjectStatus `json:"status" binding:"omitempty,oneof=active completed archived"`
		StartDate   *time.Time            `json:"start_date"`
		EndDate     *time.Time            `json:"end_date"`
		Color       *string               `json:"color" binding:"omitempty,max=16"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}

	// A second pass over the raw body tells an explicit null apart from an
	// absent field for the nullable dates.
	var raw map[string]any
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Color:       req.Color,
	}
	if v, sent := raw["start_date"]; sent && v == nil {
		input.ClearStartDate = true
	}
	if v, sent := raw["end_date"]; sent && v == nil {
		input.ClearEndDate = true
	}

	project, err := h.projectService.UpdateProject(userID, projectID, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project the current user owns.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(userID, projectID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted",
	})
}

// ListProjectTasks returns the tasks of a project the current user owns.
func (h *ProjectHandler) ListProjectTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := idParam(c)
	if !ok {
		return
	}

	tasks, err := h.projectService.ListProjectTasks(userID, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
	})
}

// ListProjectMembers returns the members of a project the current user owns.
func (h *ProjectHandler) ListProjectMembers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := idParam(c)
	if !ok {
		return
	}

	members, err := h.projectService.ListProjectMembers(userID, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToProjectMemberDTOs(members),
	})
}

// AddMember attaches a user to a project the current user owns.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := idParam(c)
	if !ok {
		return
	}

	type MemberRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req MemberRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.projectService.AddMember(userID, projectID, req.UserID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member added successfully",
	})
}

// RemoveMember detaches a user from a project the current user owns.
// Removing a non-member is a successful no-op.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := idParam(c)
	if !ok {
		return
	}

	type MemberRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req MemberRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.projectService.RemoveMember(userID, projectID, req.UserID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrProjectNameEmpty):
		apierrors.ValidationFailed(c, map[string]string{"name": "This field is required"})
	case errors.Is(err, services.ErrInvalidProjectStatus):
		apierrors.ValidationFailed(c, map[string]string{"status": "Must be one of: active, completed, archived"})
	case errors.Is(err, services.ErrEndDateBeforeStart):
		apierrors.ValidationFailed(c, map[string]string{"end_date": "Must not be before start_date"})
	case errors.Is(err, services.ErrMemberUserNotFound):
		apierrors.ValidationFailed(c, map[string]string{"user_id": "User does not exist"})
	case errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.Conflict(c, "User is already a member of this project")
	case errors.Is(err, services.ErrMemberIsProjectOwner):
		apierrors.Conflict(c, "User is the project owner")
	default:
		apierrors.InternalError(c, "")
	}
}
