package handlers

import (
	"bytes"
	"net/http/httptest"
	"strconv"
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

type testEnv struct {
	db             *gorm.DB
	authService    *services.AuthService
	projectService *services.ProjectService
	taskService    *services.TaskService
	userService    *services.UserService
	authHandler    *AuthHandler
	projectHandler *ProjectHandler
	taskHandler    *TaskHandler
	userHandler    *UserHandler
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
	)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo, "test-secret")
	projectService := services.NewProjectService(projectRepo, taskRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo)
	userService := services.NewUserService(userRepo)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return testEnv{
		db:             db,
		authService:    authService,
		projectService: projectService,
		taskService:    taskService,
		userService:    userService,
		authHandler:    NewAuthHandler(authService),
		projectHandler: NewProjectHandler(projectService),
		taskHandler:    NewTaskHandler(taskService),
		userHandler:    NewUserHandler(userService),
	}
}

func testContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != 0 {
		c.Set(constants.ContextKeyUserID, userID)
	}

	return c, w
}

func withIDParam(c *gin.Context, id uint64) {
	c.Params = append(c.Params, gin.Param{Key: "id", Value: strconv.FormatUint(id, 10)})
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashed",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProject(t *testing.T, env testEnv, ownerID uint64, name string) *models.Project {
	t.Helper()

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:    name,
		OwnerID: ownerID,
	})
	require.NoError(t, err)
	return project
}

func createTestTask(t *testing.T, env testEnv, actorID, projectID uint64, title string) *models.Task {
	t.Helper()

	task, err := env.taskService.CreateTask(services.CreateTaskInput{
		ProjectID: projectID,
		Title:     title,
		ActorID:   actorID,
	})
	require.NoError(t, err)
	return task
}
