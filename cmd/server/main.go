package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/hungbu/projectmanager/internal/config"
	"github.com/hungbu/projectmanager/internal/database"
	"github.com/hungbu/projectmanager/internal/handlers"
	"github.com/hungbu/projectmanager/internal/middleware"
	"github.com/hungbu/projectmanager/internal/repository"
	"github.com/hungbu/projectmanager/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	projectService := services.NewProjectService(projectRepo, taskRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo)
	userService := services.NewUserService(userRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Manager API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Public routes
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(authService))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/user", authHandler.GetCurrentUser)

			// Project routes
			projects := protected.Group("/projects")
			{
				projects.GET("", projectHandler.ListProjects)
				projects.POST("", projectHandler.CreateProject)
				projects.GET("/:id", projectHandler.GetProject)
				projects.PUT("/:id", projectHandler.UpdateProject)
				projects.DELETE("/:id", projectHandler.DeleteProject)
				projects.GET("/:id/tasks", projectHandler.ListProjectTasks)
				projects.GET("/:id/members", projectHandler.ListProjectMembers)
				projects.POST("/:id/add-member", projectHandler.AddMember)
				projects.POST("/:id/remove-member", projectHandler.RemoveMember)
			}

			// Task routes
			tasks := protected.Group("/tasks")
			{
				tasks.GET("", taskHandler.ListTasks)
				tasks.POST("", taskHandler.CreateTask)
				tasks.GET("/:id", taskHandler.GetTask)
				tasks.PATCH("/:id", taskHandler.UpdateTask)
				tasks.DELETE("/:id", taskHandler.DeleteTask)
				tasks.PATCH("/:id/status", taskHandler.SetTaskStatus)
				tasks.PATCH("/:id/assign", taskHandler.AssignTask)
				tasks.PATCH("/:id/unassign", taskHandler.UnassignTask)
			}

			// User administration routes (admin only)
			users := protected.Group("/users")
			users.Use(middleware.RequireAdmin())
			{
				users.GET("", userHandler.ListUsers)
				users.POST("", userHandler.CreateUser)
				users.GET("/:id", userHandler.GetUser)
				users.PUT("/:id", userHandler.UpdateUser)
				users.DELETE("/:id", userHandler.DeleteUser)
				users.PATCH("/:id/toggle-status", userHandler.ToggleUserActive)
			}
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
