package repository

import (
	"github.com/hungbu/projectmanager/internal/database"
	"github.com/hungbu/projectmanager/internal/models"
	"github.com/hungbu/projectmanager/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// ListVisible lists projects the actor owns or is a member of
func (r *GormProjectRepository) ListVisible(actorID uint64, params utils.PaginationParams) ([]models.Project, int64, error) {
	query := r.db.Model(&models.Project{}).
		Scopes(database.ProjectVisibleTo(actorID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := query.
		Scopes(database.Paginate(params)).
		Preload("Owner").
		Preload("Tasks").
		Preload("Members").
		Preload("Members.User").
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// FindVisibleByID finds a project by ID within the actor's read scope
func (r *GormProjectRepository) FindVisibleByID(actorID, id uint64) (*models.Project, error) {
	var project models.Project
	err := r.db.Model(&models.Project{}).
		Scopes(database.ProjectVisibleTo(actorID)).
		Preload("Owner").
		Preload("Tasks").
		Preload("Members").
		Preload("Members.User").
		Where("projects.id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindOwnedByID finds a project by ID within the actor's owned projects
func (r *GormProjectRepository) FindOwnedByID(actorID, id uint64) (*models.Project, error) {
	var project models.Project
	err := r.db.Model(&models.Project{}).
		Scopes(database.ProjectOwnedBy(actorID)).
		Where("projects.id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Delete all tasks in the project
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		// Delete all memberships
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		// Delete project
		if err := tx.Delete(&models.Project{}, id).Error; err != nil {
			return err
		}

		return nil
	})
}

// ListMembers lists all members of a project
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember inserts a membership pair. The composite primary key makes the
// insert the atomic check-then-act: under concurrent adds for the same pair
// exactly one succeeds and the rest see gorm.ErrDuplicatedKey.
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Create(member).Error
}

// RemoveMember deletes a membership pair; absent pairs delete zero rows
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// IsMember reports whether the membership pair exists
func (r *GormProjectRepository) IsMember(projectID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
