package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/budgetkeeper/internal/models"
)

// SumByType returns income and expense totals for the period
func (s *Storage) SumByType(ctx context.Context, userID int64, from, to time.Time) (int64, int64, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense
		FROM transactions
		WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?
	`

	var totals struct {
		Income  int64 `db:"income"`
		Expense int64 `db:"expense"`
	}
	if err := s.db.GetContext(ctx, &totals, s.db.Rebind(query), userID, from.UTC(), to.UTC()); err != nil {
		return 0, 0, fmt.Errorf("failed to sum transactions: %w", err)
	}

	return totals.Income, totals.Expense, nil
}

// ExpensesByCategory returns expense totals grouped by category, largest first
func (s *Storage) ExpensesByCategory(ctx context.Context, userID int64, from, to time.Time) ([]models.CategoryTotal, error) {
	query := `
		SELECT t.category_id AS category_id,
			COALESCE(c.name, 'Uncategorized') AS name,
			COALESCE(SUM(t.amount), 0) AS amount
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.type = 'expense' AND t.occurred_at >= ? AND t.occurred_at < ?
		GROUP BY t.category_id, c.name
		ORDER BY amount DESC, name
	`

	totals := []models.CategoryTotal{}
	if err := s.db.SelectContext(ctx, &totals, s.db.Rebind(query), userID, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("failed to group expenses: %w", err)
	}

	return totals, nil
}

// SpentInPeriod returns expense total for one category or for all of them
func (s *Storage) SpentInPeriod(ctx context.Context, userID int64, categoryID *int64, from, to time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = ? AND type = 'expense' AND occurred_at >= ? AND occurred_at < ?
	`
	args := []any{userID, from.UTC(), to.UTC()}

	if categoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *categoryID)
	}

	var spent int64
	if err := s.db.GetContext(ctx, &spent, s.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}

	return spent, nil
}

// MonthlyTotals returns income and expense per month for the period
func (s *Storage) MonthlyTotals(ctx context.Context, userID int64, from, to time.Time) ([]models.MonthTotal, error) {
	month := s.monthExpr("occurred_at")
	query := `
		SELECT ` + month + ` AS month,
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense
		FROM transactions
		WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?
		GROUP BY ` + month + `
		ORDER BY month
	`

	totals := []models.MonthTotal{}
	if err := s.db.SelectContext(ctx, &totals, s.db.Rebind(query), userID, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly totals: %w", err)
	}

	return totals, nil
}
