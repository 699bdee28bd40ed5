package repository

import (
	"github.com/hungbu/projectmanager/internal/database"
	"github.com/hungbu/projectmanager/internal/models"
	"github.com/hungbu/projectmanager/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindOwnedByID finds a task by ID within the actor's owned projects, with
// optional preloading. A task in a merely member-visible project is not
// reachable here; the caller cannot tell that case apart from a missing row.
func (r *GormTaskRepository) FindOwnedByID(actorID, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Model(&models.Task{}).
		Scopes(database.TaskInProjectOwnedBy(actorID)).
		Where("tasks.id = ?", id)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListOwned retrieves tasks in the actor's owned projects with filtering
// and pagination
func (r *GormTaskRepository) ListOwned(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).
		Scopes(database.TaskInProjectOwnedBy(filter.ActorID))

	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Preload("Project").Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListByProject retrieves all tasks of a project with assignees attached
func (r *GormTaskRepository) ListByProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("project_id = ?", projectID).
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}
