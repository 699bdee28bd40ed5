package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hungbu/projectmanager/internal/dto"
	"github.com/hungbu/projectmanager/internal/models"
	"github.com/stretchr/testify/require"
)

func TestAdminCreateUser(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)

	body := []byte(`{"name":"Bob","email":"bob@example.com","password":"password123","password_confirmation":"password123","role":"partner"}`)
	c, w := testContext("POST", "/api/users", body, admin.ID)
	env.userHandler.CreateUser(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Message string      `json:"message"`
		User    dto.UserDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "bob@example.com", resp.User.Email)
	require.Equal(t, models.RolePartner, resp.User.Role)
	require.True(t, resp.User.IsActive)
}

func TestAdminCreateUserPasswordMismatch(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)

	body := []byte(`{"name":"Bob","email":"bob@example.com","password":"password123","password_confirmation":"different123","role":"user"}`)
	c, w := testContext("POST", "/api/users", body, admin.ID)
	env.userHandler.CreateUser(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "password_confirmation")
}

func TestAdminCreateUserDuplicateEmail(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)
	createTestUser(t, env.db, "Bob", "bob@example.com", models.RoleUser)

	body := []byte(`{"name":"Other Bob","email":"bob@example.com","password":"password123","password_confirmation":"password123","role":"user"}`)
	c, w := testContext("POST", "/api/users", body, admin.ID)
	env.userHandler.CreateUser(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminListUsers(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)
	createTestUser(t, env.db, "Bob", "bob@example.com", models.RoleUser)

	c, w := testContext("GET", "/api/users", nil, admin.ID)
	env.userHandler.ListUsers(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Users []dto.UserDTO `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Users, 2)
	require.NotContains(t, w.Body.String(), "password")
}

func TestAdminUpdateUser(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)
	target := createTestUser(t, env.db, "Bob", "bob@example.com", models.RoleUser)

	body := []byte(`{"name":"Robert","role":"partner"}`)
	c, w := testContext("PUT", "/api/users/2", body, admin.ID)
	withIDParam(c, target.ID)
	env.userHandler.UpdateUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User dto.UserDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Robert", resp.User.Name)
	require.Equal(t, models.RolePartner, resp.User.Role)
	require.Equal(t, "bob@example.com", resp.User.Email)
}

func TestAdminUpdateUserDuplicateEmail(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)
	createTestUser(t, env.db, "Bob", "bob@example.com", models.RoleUser)
	target := createTestUser(t, env.db, "Carol", "carol@example.com", models.RoleUser)

	body := []byte(`{"email":"bob@example.com"}`)
	c, w := testContext("PUT", "/api/users/3", body, admin.ID)
	withIDParam(c, target.ID)
	env.userHandler.UpdateUser(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminUpdateUserKeepOwnEmail(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)
	target := createTestUser(t, env.db, "Bob", "bob@example.com", models.RoleUser)

	// Resubmitting the user's current email is not a conflict.
	body := []byte(`{"email":"bob@example.com","name":"Bobby"}`)
	c, w := testContext("PUT", "/api/users/2", body, admin.ID)
	withIDParam(c, target.ID)
	env.userHandler.UpdateUser(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminDeleteUser(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)
	target := createTestUser(t, env.db, "Bob", "bob@example.com", models.RoleUser)

	c, w := testContext("DELETE", "/api/users/2", nil, admin.ID)
	withIDParam(c, target.ID)
	env.userHandler.DeleteUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", target.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestAdminDeleteSelf(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)

	c, w := testContext("DELETE", "/api/users/1", nil, admin.ID)
	withIDParam(c, admin.ID)
	env.userHandler.DeleteUser(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "SELF_ACTION_FORBIDDEN")

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAdminToggleUserActive(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)
	target := createTestUser(t, env.db, "Bob", "bob@example.com", models.RoleUser)

	c, w := testContext("PATCH", "/api/users/2/toggle-status", nil, admin.ID)
	withIDParam(c, target.ID)
	env.userHandler.ToggleUserActive(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User dto.UserDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.User.IsActive)

	c, w = testContext("PATCH", "/api/users/2/toggle-status", nil, admin.ID)
	withIDParam(c, target.ID)
	env.userHandler.ToggleUserActive(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.User.IsActive)
}

func TestAdminToggleSelf(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)

	c, w := testContext("PATCH", "/api/users/1/toggle-status", nil, admin.ID)
	withIDParam(c, admin.ID)
	env.userHandler.ToggleUserActive(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "SELF_ACTION_FORBIDDEN")
}

func TestAdminSelfDeactivateViaUpdate(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)

	body := []byte(`{"is_active":false}`)
	c, w := testContext("PUT", "/api/users/1", body, admin.ID)
	withIDParam(c, admin.ID)
	env.userHandler.UpdateUser(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "SELF_ACTION_FORBIDDEN")
}

func TestAdminGetUserNotFound(t *testing.T) {
	env := setupTestEnv(t)
	admin := createTestUser(t, env.db, "Admin", "admin@example.com", models.RoleAdmin)

	c, w := testContext("GET", "/api/users/999", nil, admin.ID)
	withIDParam(c, 999)
	env.userHandler.GetUser(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
