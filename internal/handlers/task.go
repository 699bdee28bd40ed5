package handlers

import (
	"errors"
	"net/http"
	"strconv"
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

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns tasks in the current user's owned projects, optionally
// filtered by project_id and status.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{ActorID: userID}

	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		input.ProjectID = &projectID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// CreateTask creates a task inside a project the current user owns.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		ProjectID      uint64              `json:"project_id" binding:"required"`
		Title          string              `json:"title" binding:"required,max=255"`
		Description    string              `json:"description"`
		Status         models.TaskStatus   `json:"status" binding:"omitempty,oneof=todo in_progress review done"`
		Priority       models.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
		AssigneeID     *uint64             `json:"assignee_id"`
		DueDate        *time.Time          `json:"due_date"`
		EstimatedHours *int                `json:"estimated_hours"`
		Tags           []string            `json:"tags"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		AssigneeID:     req.AssigneeID,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Tags:           req.Tags,
		ActorID:        userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task in a project the current user owns.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := idParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates a task in a project the current user owns.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := idParam(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title          *string              `json:"title" binding:"omitempty,max=255"`
		Description    *string              `json:"description"`
		Status         *models.TaskStatus   `json:"status" binding:"omitempty,oneof=todo in_progress review done"`
		Priority       *models.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
		ProjectID      *uint64              `json:"project_id"`
		AssigneeID     *uint64              `json:"assignee_id"`
		DueDate        *time.Time           `json:"due_date"`
		EstimatedHours *int                 `json:"estimated_hours"`
		Tags           []string             `json:"tags"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}

	// Second raw pass so an explicit null clears the nullable fields
	// instead of being read as absent.
	var raw map[string]any
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		ProjectID:      req.ProjectID,
		AssigneeID:     req.AssigneeID,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Tags:           req.Tags,
	}
	if v, sent := raw["assignee_id"]; sent && v == nil {
		input.ClearAssignee = true
	}
	if v, sent := raw["due_date"]; sent && v == nil {
		input.ClearDueDate = true
	}

	task, err := h.taskService.UpdateTask(userID, taskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task in a project the current user owns.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(userID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted",
	})
}

// SetTaskStatus writes a task's status (Kanban column move).
func (h *TaskHandler) SetTaskStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := idParam(c)
	if !ok {
		return
	}

	type StatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required,oneof=todo in_progress review done"`
	}

	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.SetStatus(userID, taskID, req.Status)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// AssignTask sets a task's assignee, replacing any prior assignee.
func (h *TaskHandler) AssignTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := idParam(c)
	if !ok {
		return
	}

	type AssignRequest struct {
		AssigneeID uint64 `json:"assignee_id" binding:"required"`
	}

	var req AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Assign(userID, taskID, req.AssigneeID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UnassignTask clears a task's assignee.
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := idParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.Unassign(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrTaskTitleEmpty):
		apierrors.ValidationFailed(c, map[string]string{"title": "This field is required"})
	case errors.Is(err, services.ErrInvalidTaskStatus):
		apierrors.ValidationFailed(c, map[string]string{"status": "Must be one of: todo, in_progress, review, done"})
	case errors.Is(err, services.ErrInvalidTaskPriority):
		apierrors.ValidationFailed(c, map[string]string{"priority": "Must be one of: low, medium, high"})
	case errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.ValidationFailed(c, map[string]string{"assignee_id": "User does not exist"})
	default:
		apierrors.InternalError(c, "")
	}
}
