package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hungbu/projectmanager/internal/dto"
	apierrors "github.com/hungbu/projectmanager/internal/errors"
	"github.com/hungbu/projectmanager/internal/middleware"
	"github.com/hungbu/projectmanager/internal/models"
	"github.com/hungbu/projectmanager/internal/services"
)

// UserHandler coordinates the admin-only user administration handlers. The
// admin role gate runs once, as route-group middleware, before any of these.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns all user records.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
	})
}

// CreateUser creates an account with an explicit role.
func (h *UserHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Name                 string      `json:"name" binding:"required,max=255"`
		Email                string      `json:"email" binding:"required,email,max=255"`
		Password             string      `json:"password" binding:"required,min=8"`
		PasswordConfirmation string      `json:"password_confirmation" binding:"required,eqfield=Password"`
		Role                 models.Role `json:"role" binding:"required,oneof=admin partner user"`
	}

	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateUser(services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    dto.ToUserDTO(*user),
	})
}

// GetUser returns a single user record.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser updates a user record.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Name     *string      `json:"name" binding:"omitempty,max=255"`
		Email    *string      `json:"email" binding:"omitempty,email,max=255"`
		Role     *models.Role `json:"role" binding:"omitempty,oneof=admin partner user"`
		IsActive *bool        `json:"is_active"`
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(actorID, id, services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    dto.ToUserDTO(*user),
	})
}

// DeleteUser permanently removes a user record. Self-delete is rejected.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(actorID, id); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

// ToggleUserActive flips a user's active flag. Self-deactivation is
// rejected.
func (h *UserHandler) ToggleUserActive(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	user, err := h.userService.ToggleUserActive(actorID, id)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User status updated successfully",
		"user":    dto.ToUserDTO(*user),
	})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "Email is already taken")
	case errors.Is(err, services.ErrUserNameEmpty):
		apierrors.ValidationFailed(c, map[string]string{"name": "This field is required"})
	case errors.Is(err, services.ErrInvalidRole):
		apierrors.ValidationFailed(c, map[string]string{"role": "Must be one of: admin, partner, user"})
	case errors.Is(err, services.ErrSelfDelete):
		apierrors.SelfActionForbidden(c, "Cannot delete your own account")
	case errors.Is(err, services.ErrSelfDeactivate):
		apierrors.SelfActionForbidden(c, "Cannot deactivate your own account")
	default:
		apierrors.InternalError(c, "")
	}
}
