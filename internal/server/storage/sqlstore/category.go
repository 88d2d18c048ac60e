package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/storage"
)

const categoryColumns = `id, user_id, name, kind, created_at`

// CreateCategory creates category and sets its ID
func (s *Storage) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `INSERT INTO categories (user_id, name, kind, created_at) VALUES (?, ?, ?, ?) RETURNING id`

	id, err := s.insertReturningID(ctx, query,
		category.UserID,
		category.Name,
		string(category.Kind),
		category.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}

	category.ID = id
	return nil
}

// GetCategory retrieves category by ID
func (s *Storage) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

	if err := s.db.GetContext(ctx, category, s.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// ListCategories returns user's categories and system ones
func (s *Storage) ListCategories(ctx context.Context, userID int64) ([]*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + ` FROM categories
		WHERE user_id = ? OR user_id IS NULL
		ORDER BY CASE WHEN user_id IS NULL THEN 1 ELSE 0 END, name
	`

	categories := []*models.Category{}
	if err := s.db.SelectContext(ctx, &categories, s.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// ListSystemCategories returns categories without owner
func (s *Storage) ListSystemCategories(ctx context.Context) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id IS NULL ORDER BY name`

	categories := []*models.Category{}
	if err := s.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list system categories: %w", err)
	}

	return categories, nil
}

// DeleteCategory deletes category owned by user
func (s *Storage) DeleteCategory(ctx context.Context, userID, id int64) error {
	n, err := s.execAffected(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}
