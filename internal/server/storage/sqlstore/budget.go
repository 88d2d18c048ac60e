package sqlstore

import (
	"context"
	"fmt"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/storage"
)

const (
	budgetColumns = `id, user_id, category_id, year, month, limit_amount, created_at`
	alertColumns  = `id, user_id, budget_id, message, spent, limit_amount, is_read, created_at`
)

// CreateBudget creates monthly budget and sets its ID
func (s *Storage) CreateBudget(ctx context.Context, budget *models.MonthlyBudget) error {
	query := `
		INSERT INTO monthly_budgets (user_id, category_id, year, month, limit_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	id, err := s.insertReturningID(ctx, query,
		budget.UserID,
		budget.CategoryID,
		budget.Year,
		budget.Month,
		budget.LimitAmount,
		budget.CreatedAt.UTC(),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return storage.ErrAlreadyExists
		case isForeignKeyViolation(err):
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to insert budget: %w", err)
	}

	budget.ID = id
	return nil
}

// ListBudgets returns user's budgets, optionally for a given year and month
func (s *Storage) ListBudgets(ctx context.Context, userID int64, year, month int) ([]*models.MonthlyBudget, error) {
	query := `SELECT ` + budgetColumns + ` FROM monthly_budgets WHERE user_id = ?`
	args := []any{userID}

	if year > 0 {
		query += ` AND year = ?`
		args = append(args, year)
	}
	if month > 0 {
		query += ` AND month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY year DESC, month DESC, id`

	budgets := []*models.MonthlyBudget{}
	if err := s.db.SelectContext(ctx, &budgets, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	return budgets, nil
}

// DeleteBudget deletes user's budget
func (s *Storage) DeleteBudget(ctx context.Context, userID, id int64) error {
	n, err := s.execAffected(ctx, `DELETE FROM monthly_budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// CreateAlert stores alert unless the budget already has one
func (s *Storage) CreateAlert(ctx context.Context, alert *models.Alert) (bool, error) {
	query := `
		INSERT INTO alerts (user_id, budget_id, message, spent, limit_amount, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (budget_id) DO NOTHING
	`

	n, err := s.execAffected(ctx, query,
		alert.UserID,
		alert.BudgetID,
		alert.Message,
		alert.Spent,
		alert.LimitAmount,
		alert.IsRead,
		alert.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert alert: %w", err)
	}

	return n > 0, nil
}

// ListAlerts returns user's alerts, newest first
func (s *Storage) ListAlerts(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE user_id = ?`
	args := []any{userID}

	if unreadOnly {
		query += ` AND is_read = ?`
		args = append(args, false)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	alerts := []*models.Alert{}
	if err := s.db.SelectContext(ctx, &alerts, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return alerts, nil
}

// MarkAlertRead marks user's alert as read
func (s *Storage) MarkAlertRead(ctx context.Context, userID, id int64) error {
	n, err := s.execAffected(ctx, `UPDATE alerts SET is_read = ? WHERE id = ? AND user_id = ?`, true, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}
