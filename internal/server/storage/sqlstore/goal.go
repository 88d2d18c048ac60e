package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/storage"
)

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, created_at, updated_at`

// CreateGoal creates savings goal and sets its ID
func (s *Storage) CreateGoal(ctx context.Context, goal *models.Goal) error {
	query := `
		INSERT INTO goals (user_id, name, target_amount, current_amount, deadline, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	id, err := s.insertReturningID(ctx, query,
		goal.UserID,
		goal.Name,
		goal.TargetAmount,
		goal.CurrentAmount,
		utcOrNil(goal.Deadline),
		goal.CreatedAt.UTC(),
		goal.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	goal.ID = id
	return nil
}

// GetGoal retrieves user's goal
func (s *Storage) GetGoal(ctx context.Context, userID, id int64) (*models.Goal, error) {
	goal := &models.Goal{}
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = ? AND user_id = ?`

	if err := s.db.GetContext(ctx, goal, s.db.Rebind(query), id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return goal, nil
}

// ListGoals returns user's goals
func (s *Storage) ListGoals(ctx context.Context, userID int64) ([]*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ? ORDER BY id`

	goals := []*models.Goal{}
	if err := s.db.SelectContext(ctx, &goals, s.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	return goals, nil
}

// UpdateGoal overwrites name, target and deadline of user's goal
func (s *Storage) UpdateGoal(ctx context.Context, goal *models.Goal) error {
	query := `
		UPDATE goals SET name = ?, target_amount = ?, deadline = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	n, err := s.execAffected(ctx, query,
		goal.Name,
		goal.TargetAmount,
		utcOrNil(goal.Deadline),
		goal.UpdatedAt.UTC(),
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeleteGoal deletes user's goal
func (s *Storage) DeleteGoal(ctx context.Context, userID, id int64) error {
	n, err := s.execAffected(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// Contribute adds delta to goal's current amount; the result is clamped at zero
func (s *Storage) Contribute(ctx context.Context, userID, id, delta int64, now time.Time) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET current_amount = CASE WHEN current_amount + ? < 0 THEN 0 ELSE current_amount + ? END,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	n, err := s.execAffected(ctx, query, delta, delta, now.UTC(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to contribute to goal: %w", err)
	}
	if n == 0 {
		return nil, storage.ErrNotFound
	}

	return s.GetGoal(ctx, userID, id)
}
