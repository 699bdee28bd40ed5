package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hungbu/projectmanager/internal/models"
	"github.com/hungbu/projectmanager/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskTitleEmpty      = errors.New("task title cannot be empty")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrAssigneeNotFound    = errors.New("assignee does not exist")
)

// TaskService handles task business logic. Tasks have no ACL of their own:
// every operation resolves authorization transitively through the owning
// project, and project members get the same missing-row answer as strangers.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ActorID   uint64
	ProjectID *uint64
	Status    *models.TaskStatus
	Page      int
	PageSize  int
}

// ListTasks returns tasks in the actor's owned projects matching the
// filters. A project_id outside the owned scope simply matches nothing.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		ActorID:   input.ActorID,
		ProjectID: input.ProjectID,
		Status:    input.Status,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}

	tasks, total, err := s.taskRepo.ListOwned(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with its project and assignee attached.
func (s *TaskService) GetTask(actorID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindOwnedByID(actorID, taskID, "Project", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID      uint64
	Title          string
	Description    string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	AssigneeID     *uint64
	DueDate        *time.Time
	EstimatedHours *int
	Tags           []string
	ActorID        uint64
}

// CreateTask creates a task inside a project the actor owns. A project that
// is missing, deleted, or owned by someone else yields the same not-found.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleEmpty
	}

	if _, err := s.projectRepo.FindOwnedByID(input.ActorID, input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(input.Status) {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(input.Priority) {
		return nil, ErrInvalidTaskPriority
	}

	if input.AssigneeID != nil {
		if err := s.ensureUserExists(*input.AssigneeID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		Tags:           input.Tags,
		ProjectID:      input.ProjectID,
		AssigneeID:     input.AssigneeID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(input.ActorID, task.ID)
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// untouched; present fields are re-validated with the create rules.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	ProjectID      *uint64
	AssigneeID     *uint64
	ClearAssignee  bool
	DueDate        *time.Time
	ClearDueDate   bool
	EstimatedHours *int
	Tags           []string
}

// UpdateTask updates a task in a project the actor owns. Moving the task to
// another project requires owning the target project too; otherwise the
// task could escape into a project its owner cannot see.
func (s *TaskService) UpdateTask(actorID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindOwnedByID(actorID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTaskTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
		if _, err := s.projectRepo.FindOwnedByID(actorID, *input.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to find project: %w", err)
		}
		task.ProjectID = *input.ProjectID
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if err := s.ensureUserExists(*input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = input.EstimatedHours
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(actorID, task.ID)
}

// DeleteTask deletes a task in a project the actor owns.
func (s *TaskService) DeleteTask(actorID, taskID uint64) error {
	if _, err := s.taskRepo.FindOwnedByID(actorID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// SetStatus writes a task's status. The enum is flat: any declared value is
// reachable from any other, with no transition guards and no terminal state.
func (s *TaskService) SetStatus(actorID, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	task, err := s.taskRepo.FindOwnedByID(actorID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.Status = status
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return s.GetTask(actorID, task.ID)
}

// Assign sets a task's assignee, overwriting any prior assignee. Being the
// current assignee grants nothing: only the project owner assigns.
func (s *TaskService) Assign(actorID, taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindOwnedByID(actorID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.ensureUserExists(userID); err != nil {
		return nil, err
	}

	task.AssigneeID = &userID
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	return s.GetTask(actorID, task.ID)
}

// Unassign clears a task's assignee, even when already clear.
func (s *TaskService) Unassign(actorID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindOwnedByID(actorID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.AssigneeID = nil
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to unassign task: %w", err)
	}

	return s.GetTask(actorID, task.ID)
}

func (s *TaskService) ensureUserExists(userID uint64) error {
	exists, err := s.userRepo.Exists(userID)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	if !exists {
		return ErrAssigneeNotFound
	}
	return nil
}
