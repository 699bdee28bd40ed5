package models

import "time"

// ProjectMember links a collaborator to a project. The owner never appears
// here; owner access is carried by projects.owner_id and supersedes membership.
// The composite primary key makes a duplicate pair a database-level conflict.
type ProjectMember struct {
	ProjectID uint64    `gorm:"primarykey" json:"project_id"`
	UserID    uint64    `gorm:"primarykey" json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
