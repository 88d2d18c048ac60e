package storage

import (
	"context"
	"time"

	"github.com/iudanet/budgetkeeper/internal/models"
)

// CategoryStorage defines interface for category persistence
type CategoryStorage interface {
	// CreateCategory creates category and sets category.ID
	// Returns ErrAlreadyExists if owner already has category with this name
	CreateCategory(ctx context.Context, category *models.Category) error

	// GetCategory retrieves category by ID regardless of owner
	// Returns ErrNotFound if category doesn't exist
	GetCategory(ctx context.Context, id int64) (*models.Category, error)

	// ListCategories returns user's own categories followed by system ones
	ListCategories(ctx context.Context, userID int64) ([]*models.Category, error)

	// ListSystemCategories returns categories without owner
	ListSystemCategories(ctx context.Context) ([]*models.Category, error)

	// DeleteCategory deletes category owned by user
	// Returns ErrNotFound if user owns no such category, ErrInUse if transactions reference it
	DeleteCategory(ctx context.Context, userID, id int64) error
}

// TransactionStorage defines interface for transaction persistence
type TransactionStorage interface {
	// CreateTransaction creates transaction and sets ID
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction retrieves user's transaction
	// Returns ErrNotFound if user owns no such transaction
	GetTransaction(ctx context.Context, userID, id int64) (*models.Transaction, error)

	// ListTransactions returns a page of transactions and total count matching the filter
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int64, error)

	// UpdateTransaction overwrites mutable fields (last write wins).
	// When expectedUpdatedAt is set and differs from stored value returns ErrStale.
	UpdateTransaction(ctx context.Context, tx *models.Transaction, expectedUpdatedAt *time.Time) error

	// DeleteTransaction deletes user's transaction
	// Returns ErrNotFound if user owns no such transaction
	DeleteTransaction(ctx context.Context, userID, id int64) error
}

// GoalStorage defines interface for savings goal persistence
type GoalStorage interface {
	CreateGoal(ctx context.Context, goal *models.Goal) error
	GetGoal(ctx context.Context, userID, id int64) (*models.Goal, error)
	ListGoals(ctx context.Context, userID int64) ([]*models.Goal, error)
	UpdateGoal(ctx context.Context, goal *models.Goal) error
	DeleteGoal(ctx context.Context, userID, id int64) error

	// Contribute atomically adds delta to current amount, never going below zero
	Contribute(ctx context.Context, userID, id, delta int64, now time.Time) (*models.Goal, error)
}

// BudgetStorage defines interface for monthly budgets and their alerts
type BudgetStorage interface {
	// CreateBudget creates budget and sets ID
	// Returns ErrAlreadyExists on duplicate (category, year, month)
	CreateBudget(ctx context.Context, budget *models.MonthlyBudget) error

	// ListBudgets returns user's budgets; zero year or month disables that filter
	ListBudgets(ctx context.Context, userID int64, year, month int) ([]*models.MonthlyBudget, error)

	// DeleteBudget deletes user's budget and its alert
	DeleteBudget(ctx context.Context, userID, id int64) error

	// CreateAlert stores alert unless one already exists for the budget
	// Returns true if a new alert was created
	CreateAlert(ctx context.Context, alert *models.Alert) (bool, error)

	// ListAlerts returns user's alerts, newest first
	ListAlerts(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Alert, error)

	// MarkAlertRead marks user's alert as read
	MarkAlertRead(ctx context.Context, userID, id int64) error
}

// ReportStorage defines aggregation queries over transactions.
// Periods are half-open: from <= occurred_at < to.
type ReportStorage interface {
	// SumByType returns income and expense totals
	SumByType(ctx context.Context, userID int64, from, to time.Time) (income, expense int64, err error)

	// ExpensesByCategory returns expense totals grouped by category
	ExpensesByCategory(ctx context.Context, userID int64, from, to time.Time) ([]models.CategoryTotal, error)

	// SpentInPeriod returns expense total; nil categoryID means all categories
	SpentInPeriod(ctx context.Context, userID int64, categoryID *int64, from, to time.Time) (int64, error)

	// MonthlyTotals returns income and expense per calendar month, ascending
	MonthlyTotals(ctx context.Context, userID int64, from, to time.Time) ([]models.MonthTotal, error)
}

// HealthChecker reports storage availability
type HealthChecker interface {
	Ping(ctx context.Context) error
}
