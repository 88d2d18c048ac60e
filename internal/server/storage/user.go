package storage

import (
	"context"
	"time"

	"github.com/iudanet/budgetkeeper/internal/models"
)

// UserStorage defines interface for user account persistence
type UserStorage interface {
	// CreateUser creates a new user and sets user.ID
	// Email is compared case-insensitively; returns ErrUserAlreadyExists on duplicate
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email (case-insensitive)
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUserByActivationToken retrieves user by pending activation token
	// Returns ErrUserNotFound if no user holds this token
	GetUserByActivationToken(ctx context.Context, token string) (*models.User, error)

	// ActivateUser marks account active and clears activation token
	ActivateUser(ctx context.Context, id int64) error

	// UpdateLastLogin updates the last login timestamp
	UpdateLastLogin(ctx context.Context, id int64, lastLogin time.Time) error

	// UpdateRoleAndStatus changes role and/or active flag; nil fields are left as is
	// Returns ErrUserNotFound if user doesn't exist
	UpdateRoleAndStatus(ctx context.Context, id int64, role *models.Role, isActive *bool) error

	// DeleteUser deletes user by ID together with owned records
	// Returns ErrUserNotFound if user doesn't exist, ErrInUse if user still owns categories
	DeleteUser(ctx context.Context, id int64) error

	// ListUsers returns users matching the filter ordered by ID
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
}
