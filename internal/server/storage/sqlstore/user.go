package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/storage"
)

const userColumns = `id, email, password_hash, role, is_active, activation_token,
	reset_token, reset_token_expiry, last_login, created_at, updated_at`

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, role, is_active, activation_token,
			reset_token, reset_token_expiry, last_login, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	id, err := s.insertReturningID(ctx, query,
		strings.ToLower(user.Email),
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.ActivationToken,
		user.ResetToken,
		utcOrNil(user.ResetTokenExpiry),
		utcOrNil(user.LastLogin),
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = id
	user.Email = strings.ToLower(user.Email)
	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByActivationToken retrieves user by pending activation token
func (s *Storage) GetUserByActivationToken(ctx context.Context, token string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE activation_token = ?`, token)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	if err := s.db.GetContext(ctx, user, s.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ActivateUser marks account active and clears activation token
func (s *Storage) ActivateUser(ctx context.Context, id int64) error {
	query := `UPDATE users SET is_active = ?, activation_token = NULL, updated_at = ? WHERE id = ?`

	n, err := s.execAffected(ctx, query, true, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	if n == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// UpdateLastLogin updates the last login timestamp
func (s *Storage) UpdateLastLogin(ctx context.Context, id int64, lastLogin time.Time) error {
	query := `UPDATE users SET last_login = ? WHERE id = ?`

	n, err := s.execAffected(ctx, query, lastLogin.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if n == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// UpdateRoleAndStatus changes role and/or active flag
func (s *Storage) UpdateRoleAndStatus(ctx context.Context, id int64, role *models.Role, isActive *bool) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*role))
	}
	if isActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *isActive)
	}
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`

	n, err := s.execAffected(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// DeleteUser deletes user by ID
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	n, err := s.execAffected(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrInUse
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// ListUsers returns users matching the filter
func (s *Storage) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	var (
		where []string
		args  []any
	)

	if filter.Role != nil {
		where = append(where, "role = ?")
		args = append(args, string(*filter.Role))
	}
	if filter.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *filter.IsActive)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	users := []*models.User{}
	if err := s.db.SelectContext(ctx, &users, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}
