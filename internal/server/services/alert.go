package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/storage"
	rules "github.com/iudanet/budgetkeeper/internal/validation"
)

// BudgetInput данные месячного бюджета. CategoryID == nil - общий бюджет на месяц.
type BudgetInput struct {
	CategoryID  *int64 `json:"category_id"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	LimitAmount int64  `json:"limit_amount"`
}

// Validate проверяет период и лимит
func (in BudgetInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Year, rules.YearRule),
		validation.Field(&in.Month, rules.MonthRule),
		validation.Field(&in.LimitAmount, validation.Required, rules.PositiveAmount),
	)
}

// ListBudgets бюджеты пользователя; нулевой year или month отключает фильтр
func (s *BudgetService) ListBudgets(ctx context.Context, userID int64, year, month int) ([]*models.MonthlyBudget, error) {
	budgets, err := s.store.ListBudgets(ctx, userID, year, month)
	if err != nil {
		return nil, InternalError("failed to list budgets", err)
	}
	return budgets, nil
}

// CreateBudget создает месячный бюджет и сразу проверяет его по уже внесенным расходам
func (s *BudgetService) CreateBudget(ctx context.Context, userID int64, in BudgetInput) (*models.MonthlyBudget, error) {
	if err := in.Validate(); err != nil {
		return nil, ValidationError(err)
	}
	if in.CategoryID != nil {
		if _, err := s.visibleCategory(ctx, userID, *in.CategoryID, models.TransactionExpense); err != nil {
			return nil, err
		}
	}

	budget := &models.MonthlyBudget{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Year:        in.Year,
		Month:       in.Month,
		LimitAmount: in.LimitAmount,
		CreatedAt:   s.timestamp(),
	}

	if err := s.store.CreateBudget(ctx, budget); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, ConflictError("Budget for this category and month already exists.", err)
		case errors.Is(err, storage.ErrNotFound):
			return nil, ValidationError(errCategoryNotFound)
		}
		return nil, InternalError("failed to create budget", err)
	}

	if _, err := s.checkBudget(ctx, budget); err != nil {
		s.logger.ErrorContext(ctx, "budget evaluation failed",
			slog.Int64("budget_id", budget.ID),
			slog.Any("error", err))
	}

	return budget, nil
}

// DeleteBudget удаляет бюджет вместе с его уведомлением
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NotFoundError("Budget not found.", err)
		}
		return InternalError("failed to delete budget", err)
	}
	return nil
}

// EvaluateBudgets проверяет бюджеты месяца, в который попал расход: общий бюджет
// и бюджет категории расхода. Возвращает количество созданных уведомлений.
func (s *BudgetService) EvaluateBudgets(ctx context.Context, userID int64, occurredAt time.Time, categoryID *int64) (int, error) {
	at := occurredAt.UTC()

	budgets, err := s.store.ListBudgets(ctx, userID, at.Year(), int(at.Month()))
	if err != nil {
		return 0, fmt.Errorf("failed to list budgets: %w", err)
	}

	created := 0
	for _, budget := range budgets {
		if budget.CategoryID != nil && (categoryID == nil || *budget.CategoryID != *categoryID) {
			continue
		}

		ok, err := s.checkBudget(ctx, budget)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, nil
}

// checkBudget создает уведомление, если расходы превысили лимит и уведомления еще нет
func (s *BudgetService) checkBudget(ctx context.Context, budget *models.MonthlyBudget) (bool, error) {
	from, to := models.MonthRange(budget.Year, budget.Month)

	spent, err := s.store.SpentInPeriod(ctx, budget.UserID, budget.CategoryID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to compute spent amount: %w", err)
	}
	if spent <= budget.LimitAmount {
		return false, nil
	}

	alert := &models.Alert{
		UserID:      budget.UserID,
		BudgetID:    budget.ID,
		Message:     fmt.Sprintf("Budget exceeded: spent %s of %s", models.FormatAmount(spent), models.FormatAmount(budget.LimitAmount)),
		Spent:       spent,
		LimitAmount: budget.LimitAmount,
		CreatedAt:   s.timestamp(),
	}

	created, err := s.store.CreateAlert(ctx, alert)
	if err != nil {
		return false, fmt.Errorf("failed to create alert: %w", err)
	}

	if created {
		s.logger.InfoContext(ctx, "budget exceeded",
			slog.Int64("budget_id", budget.ID),
			slog.Int64("spent", spent),
			slog.Int64("limit", budget.LimitAmount))
	}

	return created, nil
}

// ListAlerts уведомления пользователя, новые первыми
func (s *BudgetService) ListAlerts(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Alert, error) {
	alerts, err := s.store.ListAlerts(ctx, userID, unreadOnly)
	if err != nil {
		return nil, InternalError("failed to list alerts", err)
	}
	return alerts, nil
}

// MarkAlertRead отмечает уведомление прочитанным
func (s *BudgetService) MarkAlertRead(ctx context.Context, userID, id int64) error {
	if err := s.store.MarkAlertRead(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NotFoundError("Alert not found.", err)
		}
		return InternalError("failed to mark alert read", err)
	}
	return nil
}
