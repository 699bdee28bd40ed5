package dto

import (
	"time"

	"github.com/hungbu/projectmanager/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   *time.Time           `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
	Color       string               `json:"color"`
	OwnerID     uint64               `json:"owner_id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Owner       *UserDTO             `json:"owner,omitempty"`
	Tasks       []TaskDTO            `json:"tasks,omitempty"`
	Members     []ProjectMemberDTO   `json:"members,omitempty"`
}

// ProjectMemberDTO represents a collaborator in API responses
type ProjectMemberDTO struct {
	User     UserDTO   `json:"user"`
	JoinedAt time.Time `json:"joined_at"`
}

// ToProjectMemberDTO converts a member to DTO
func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	return ProjectMemberDTO{
		User:     ToUserDTO(member.User),
		JoinedAt: member.JoinedAt,
	}
}

// ToProjectMemberDTOs converts a slice of members
func ToProjectMemberDTOs(members []models.ProjectMember) []ProjectMemberDTO {
	dtos := make([]ProjectMemberDTO, len(members))
	for i, member := range members {
		dtos[i] = ToProjectMemberDTO(member)
	}
	return dtos
}

// ToProjectDTO converts a Project model to ProjectDTO, attaching whatever
// relations were preloaded
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		Color:       project.Color,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}

	if project.Owner.ID != 0 {
		owner := ToUserDTO(project.Owner)
		dto.Owner = &owner
	}

	if len(project.Tasks) > 0 {
		dto.Tasks = make([]TaskDTO, len(project.Tasks))
		for i, task := range project.Tasks {
			dto.Tasks[i] = ToTaskDTO(task)
		}
	}

	if len(project.Members) > 0 {
		dto.Members = ToProjectMemberDTOs(project.Members)
	}

	return dto
}

// ToProjectDTOs converts a slice of Project models
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = ToProjectDTO(project)
	}
	return dtos
}
