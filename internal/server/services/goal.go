package services

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/storage"
	rules "github.com/iudanet/budgetkeeper/internal/validation"
)

// GoalInput данные цели накопления
type GoalInput struct {
	Deadline     *time.Time `json:"deadline"`
	Name         string     `json:"name"`
	TargetAmount int64      `json:"target_amount"`
}

// Validate проверяет имя и целевую сумму
func (in GoalInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, rules.NameRules...),
		validation.Field(&in.TargetAmount, validation.Required, rules.PositiveAmount),
	)
}

// ListGoals цели пользователя
func (s *BudgetService) ListGoals(ctx context.Context, userID int64) ([]*models.Goal, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, InternalError("failed to list goals", err)
	}
	return goals, nil
}

// GetGoal цель пользователя
func (s *BudgetService) GetGoal(ctx context.Context, userID, id int64) (*models.Goal, error) {
	goal, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, goalError(err, "failed to get goal")
	}
	return goal, nil
}

// CreateGoal создает цель
func (s *BudgetService) CreateGoal(ctx context.Context, userID int64, in GoalInput) (*models.Goal, error) {
	if err := in.Validate(); err != nil {
		return nil, ValidationError(err)
	}

	now := s.timestamp()
	goal := &models.Goal{
		UserID:       userID,
		Name:         in.Name,
		TargetAmount: in.TargetAmount,
		Deadline:     in.Deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, InternalError("failed to create goal", err)
	}

	return goal, nil
}

// UpdateGoal меняет имя, целевую сумму и срок
func (s *BudgetService) UpdateGoal(ctx context.Context, userID, id int64, in GoalInput) (*models.Goal, error) {
	if err := in.Validate(); err != nil {
		return nil, ValidationError(err)
	}

	goal, err := s.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	goal.Name = in.Name
	goal.TargetAmount = in.TargetAmount
	goal.Deadline = in.Deadline
	goal.UpdatedAt = s.timestamp()

	if err := s.store.UpdateGoal(ctx, goal); err != nil {
		return nil, goalError(err, "failed to update goal")
	}

	return goal, nil
}

// DeleteGoal удаляет цель
func (s *BudgetService) DeleteGoal(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteGoal(ctx, userID, id); err != nil {
		return goalError(err, "failed to delete goal")
	}
	return nil
}

// Contribute пополняет цель (amount > 0) или снимает с нее (amount < 0).
// Накопленная сумма не опускается ниже нуля.
func (s *BudgetService) Contribute(ctx context.Context, userID, id, amount int64) (*models.Goal, error) {
	if amount == 0 {
		return nil, ValidationError(errors.New("amount: must not be zero"))
	}

	goal, err := s.store.Contribute(ctx, userID, id, amount, s.timestamp())
	if err != nil {
		return nil, goalError(err, "failed to contribute to goal")
	}

	return goal, nil
}

func goalError(err error, message string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NotFoundError("Goal not found.", err)
	}
	return InternalError(message, err)
}
