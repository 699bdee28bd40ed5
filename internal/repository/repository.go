package repository

import (
	"github.com/hungbu/projectmanager/internal/models"
	"github.com/hungbu/projectmanager/internal/utils"
)

// TaskRepository defines the interface for task data access. Every lookup is
// scoped to the acting user: tasks are reachable only through a project the
// actor owns, so each method resolves ownership via a join on projects.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindOwnedByID finds a task by ID within the actor's owned projects,
	// with optional preloading
	FindOwnedByID(actorID, id uint64, preload ...string) (*models.Task, error)

	// ListOwned retrieves tasks in the actor's owned projects with filtering
	// and pagination
	ListOwned(filter TaskFilter) ([]models.Task, int64, error)

	// ListByProject retrieves all tasks of a project with assignees attached
	ListByProject(projectID uint64) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ActorID   uint64
	ProjectID *uint64
	Status    *models.TaskStatus
	Page      int
	PageSize  int
}

// ProjectRepository defines the interface for project data access. Reads use
// the visibility scope (owner or member); everything that mutates a project
// or walks its relations resolves through the owner-only scope first.
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// ListVisible lists projects the actor owns or is a member of, with
	// owner, tasks and members attached, paged
	ListVisible(actorID uint64, params utils.PaginationParams) ([]models.Project, int64, error)

	// FindVisibleByID finds a project by ID within the actor's read scope
	FindVisibleByID(actorID, id uint64) (*models.Project, error)

	// FindOwnedByID finds a project by ID within the actor's owned projects
	FindOwnedByID(actorID, id uint64) (*models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project and all related data
	Delete(id uint64) error

	// ListMembers lists all members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)

	// AddMember inserts a membership pair; a duplicate pair surfaces as
	// gorm.ErrDuplicatedKey
	AddMember(member *models.ProjectMember) error

	// RemoveMember deletes a membership pair; removing an absent pair is
	// a no-op
	RemoveMember(projectID, userID uint64) error

	// IsMember reports whether the membership pair exists
	IsMember(projectID, userID uint64) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List lists all users, newest first
	List() ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete permanently deletes a user
	Delete(id uint64) error

	// Exists reports whether a user row exists
	Exists(id uint64) (bool, error)

	// EmailTaken reports whether another user already holds the email
	EmailTaken(email string, excludeID uint64) (bool, error)
}
