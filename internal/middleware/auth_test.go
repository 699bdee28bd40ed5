package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hungbu/projectmanager/internal/constants"
	"github.com/hungbu/projectmanager/internal/models"
	"github.com/hungbu/projectmanager/internal/repository"
	"github.com/hungbu/projectmanager/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthTest(t *testing.T) (*gorm.DB, *services.AuthService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, services.NewAuthService(repository.NewUserRepository(db), "test-secret")
}

func runMiddleware(handler gin.HandlerFunc, authHeader string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/projects", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	handler(c)
	return c, w
}

func TestRequireAuthValidToken(t *testing.T) {
	_, authService := setupAuthTest(t)

	user, err := authService.Register(services.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	c, w := runMiddleware(RequireAuth(authService), "Bearer "+token)

	require.False(t, c.IsAborted())
	require.Equal(t, http.StatusOK, w.Code)

	userID, ok := GetUserID(c)
	require.True(t, ok)
	require.Equal(t, user.ID, userID)

	role, ok := GetUserRole(c)
	require.True(t, ok)
	require.Equal(t, models.RoleUser, role)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	_, authService := setupAuthTest(t)

	c, w := runMiddleware(RequireAuth(authService), "")

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	_, authService := setupAuthTest(t)

	c, w := runMiddleware(RequireAuth(authService), "Token abc123")

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	_, authService := setupAuthTest(t)

	c, w := runMiddleware(RequireAuth(authService), "Bearer not-a-real-token")

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthDeactivatedUser(t *testing.T) {
	db, authService := setupAuthTest(t)

	user, err := authService.Register(services.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	// Deactivation after token issuance still locks the account out: the
	// user row is reloaded on every request.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_active", false).Error)

	c, w := runMiddleware(RequireAuth(authService), "Bearer "+token)

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "deactivated")
}

func TestRequireAuthDeletedUser(t *testing.T) {
	db, authService := setupAuthTest(t)

	user, err := authService.Register(services.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)

	c, w := runMiddleware(RequireAuth(authService), "Bearer "+token)

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/users", nil)
	c.Set(constants.ContextKeyUserID, uint64(1))
	c.Set(constants.ContextKeyUserRole, models.RoleAdmin)

	RequireAdmin()(c)

	require.False(t, c.IsAborted())
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminNonAdmin(t *testing.T) {
	for _, role := range []models.Role{models.RolePartner, models.RoleUser} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/api/users", nil)
		c.Set(constants.ContextKeyUserID, uint64(1))
		c.Set(constants.ContextKeyUserRole, role)

		RequireAdmin()(c)

		require.True(t, c.IsAborted())
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Contains(t, w.Body.String(), "FORBIDDEN")
	}
}

func TestRequireAdminMissingRole(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/users", nil)

	RequireAdmin()(c)

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
