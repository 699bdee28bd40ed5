package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hungbu/projectmanager/internal/models"
	"github.com/hungbu/projectmanager/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken        = errors.New("email is already taken")
	ErrInvalidRole       = errors.New("invalid role")
	ErrUserNameEmpty     = errors.New("user name cannot be empty")
	ErrSelfDelete        = errors.New("cannot delete your own account")
	ErrSelfDeactivate    = errors.New("cannot deactivate your own account")
)

// UserService provides the admin-only user administration surface. The
// admin role check itself lives at the route-group boundary; what remains
// here are the record-level rules, including the guard that no admin can
// delete or deactivate the account they are acting as.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers returns all user records, newest first.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUserInput represents parameters to create a user account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// CreateUser creates an account with an explicit role. A duplicate email is
// a conflict, not a validation failure.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrUserNameEmpty
	}
	if !models.ValidRole(input.Role) {
		return nil, ErrInvalidRole
	}

	taken, err := s.userRepo.EmailTaken(input.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user record by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateUserInput represents parameters to update a user. Nil fields are
// left untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Role     *models.Role
	IsActive *bool
}

// UpdateUser updates a user record. Deactivating the acting admin's own
// account through this path is rejected like the dedicated toggle.
func (s *UserService) UpdateUser(actorID, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrUserNameEmpty
		}
		user.Name = *input.Name
	}
	if input.Email != nil && *input.Email != user.Email {
		taken, err := s.userRepo.EmailTaken(*input.Email, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = *input.Email
	}
	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		if !*input.IsActive && id == actorID {
			return nil, ErrSelfDeactivate
		}
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user record. Admins cannot delete themselves.
func (s *UserService) DeleteUser(actorID, id uint64) error {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.ID == actorID {
		return ErrSelfDelete
	}

	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// ToggleUserActive flips a user's active flag. Admins cannot toggle their
// own account; deactivation is the normal decommission path for everyone
// else.
func (s *UserService) ToggleUserActive(actorID, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.ID == actorID {
		return nil, ErrSelfDeactivate
	}

	user.IsActive = !user.IsActive
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	return user, nil
}
