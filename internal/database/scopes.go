package database

import (
	"gorm.io/gorm"

	"github.com/hungbu/projectmanager/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ProjectVisibleTo narrows a project query to rows the user may read:
// projects they own plus projects where a membership row exists. This is
// the read scope only; every mutating operation uses ProjectOwnedBy.
func ProjectVisibleTo(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		membership := db.Session(&gorm.Session{NewDB: true}).
			Table("project_members").
			Select("1").
			Where("project_members.project_id = projects.id").
			Where("project_members.user_id = ?", userID)
		return db.Where("projects.owner_id = ? OR EXISTS (?)", userID, membership)
	}
}

// ProjectOwnedBy narrows a project query to rows the user owns. Membership
// never satisfies this scope: a member can see a project but cannot alter
// it, its membership, or its tasks.
func ProjectOwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("projects.owner_id = ?", userID)
	}
}

// TaskInProjectOwnedBy narrows a task query to tasks whose parent project is
// owned by the user. Task access is always resolved transitively through the
// project; there is no task-level ACL and no member access to tasks.
func TaskInProjectOwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.owner_id = ?", userID).
			Where("projects.deleted_at IS NULL")
	}
}
