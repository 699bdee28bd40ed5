package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hungbu/projectmanager/internal/models"
	"github.com/hungbu/projectmanager/internal/repository"
	"github.com/hungbu/projectmanager/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectNameEmpty      = errors.New("project name cannot be empty")
	ErrInvalidProjectStatus  = errors.New("invalid project status")
	ErrEndDateBeforeStart    = errors.New("end date must not be before start date")
	ErrMemberUserNotFound    = errors.New("member user does not exist")
	ErrAlreadyProjectMember  = errors.New("user is already a member of this project")
	ErrMemberIsProjectOwner  = errors.New("user is the project owner")
)

// ProjectService provides business logic for project operations. Reads go
// through the owner-or-member visibility scope; every mutation, membership
// change and nested listing requires ownership and reports a missing row
// otherwise, so a member and a stranger get the same answer.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
	}
}

// CreateProjectInput represents parameters to create a new project. OwnerID
// is always the acting user; it is never read from the request payload.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Color       string
	OwnerID     uint64
}

// CreateProject creates a new project owned by the acting user.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProjectNameEmpty
	}

	if input.Status == "" {
		input.Status = models.ProjectStatusActive
	}
	if !models.ValidProjectStatus(input.Status) {
		return nil, ErrInvalidProjectStatus
	}

	if err := validateDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		Status:      input.Status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Color:       input.Color,
		OwnerID:     input.OwnerID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.GetProject(input.OwnerID, project.ID)
}

// ListProjects returns projects the actor owns or is a member of.
func (s *ProjectService) ListProjects(actorID uint64, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.ListVisible(actorID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project within the actor's read scope, with owner,
// tasks and members attached.
func (s *ProjectService) GetProject(actorID, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindVisibleByID(actorID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// UpdateProjectInput represents parameters to update a project. Nil fields
// are left untouched; present fields are re-validated with the create rules.
type UpdateProjectInput struct {
	Name           *string
	Description    *string
	Status         *models.ProjectStatus
	StartDate      *time.Time
	ClearStartDate bool
	EndDate        *time.Time
	ClearEndDate   bool
	Color          *string
}

// UpdateProject updates a project the actor owns. Ownership is not
// reassignable; owner_id is fixed at creation.
func (s *ProjectService) UpdateProject(actorID, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindOwnedByID(actorID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProjectNameEmpty
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidProjectStatus(*input.Status) {
			return nil, ErrInvalidProjectStatus
		}
		project.Status = *input.Status
	}
	if input.ClearStartDate {
		project.StartDate = nil
	} else if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.ClearEndDate {
		project.EndDate = nil
	} else if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.Color != nil {
		project.Color = *input.Color
	}

	// The ordering rule holds for the merged row, not just the payload, so
	// an update touching only one of the pair is still checked.
	if err := validateDateRange(project.StartDate, project.EndDate); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.GetProject(actorID, projectID)
}

// DeleteProject removes a project the actor owns, along with its tasks and
// memberships.
func (s *ProjectService) DeleteProject(actorID, projectID uint64) error {
	if _, err := s.projectRepo.FindOwnedByID(actorID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// ListProjectTasks returns the tasks of a project the actor owns. Members
// cannot list tasks; task access never derives from membership.
func (s *ProjectService) ListProjectTasks(actorID, projectID uint64) ([]models.Task, error) {
	if _, err := s.projectRepo.FindOwnedByID(actorID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	tasks, err := s.taskRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return tasks, nil
}

// ListProjectMembers returns the members of a project the actor owns.
func (s *ProjectService) ListProjectMembers(actorID, projectID uint64) ([]models.ProjectMember, error) {
	if _, err := s.projectRepo.FindOwnedByID(actorID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

// AddMember attaches a user to a project the actor owns. Adding an existing
// member is a conflict, never a silent success; the composite primary key
// keeps the check-then-insert honest under concurrency. The owner cannot be
// attached: ownership already supersedes membership.
func (s *ProjectService) AddMember(actorID, projectID, userID uint64) error {
	project, err := s.projectRepo.FindOwnedByID(actorID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	exists, err := s.userRepo.Exists(userID)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	if !exists {
		return ErrMemberUserNotFound
	}

	if userID == project.OwnerID {
		return ErrMemberIsProjectOwner
	}

	isMember, err := s.projectRepo.IsMember(projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if isMember {
		return ErrAlreadyProjectMember
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		JoinedAt:  time.Now(),
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyProjectMember
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// RemoveMember detaches a user from a project the actor owns. Removing a
// non-member succeeds as a no-op; only the user's existence is checked.
func (s *ProjectService) RemoveMember(actorID, projectID, userID uint64) error {
	if _, err := s.projectRepo.FindOwnedByID(actorID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	exists, err := s.userRepo.Exists(userID)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	if !exists {
		return ErrMemberUserNotFound
	}

	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// validateDateRange rejects end < start; equal dates are accepted.
func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrEndDateBeforeStart
	}
	return nil
}
