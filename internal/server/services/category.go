package services

import (
	"context"
	"errors"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/storage"
	rules "github.com/iudanet/budgetkeeper/internal/validation"
)

var errCategoryNotFound = errors.New("category_id: category not found")

// CategoryInput данные новой категории
type CategoryInput struct {
	Name string                 `json:"name"`
	Kind models.TransactionType `json:"kind"`
}

// Validate проверяет имя и тип категории
func (in CategoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, rules.NameRules...),
		validation.Field(&in.Kind, validation.Required, rules.TransactionTypeRule),
	)
}

// ListCategories собственные и системные категории пользователя
func (s *BudgetService) ListCategories(ctx context.Context, userID int64) ([]*models.Category, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, InternalError("failed to list categories", err)
	}
	return categories, nil
}

// ListSystemCategories системные категории
func (s *BudgetService) ListSystemCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.store.ListSystemCategories(ctx)
	if err != nil {
		return nil, InternalError("failed to list system categories", err)
	}
	return categories, nil
}

// CreateCategory создает категорию пользователя
func (s *BudgetService) CreateCategory(ctx context.Context, userID int64, in CategoryInput) (*models.Category, error) {
	return s.createCategory(ctx, &userID, in)
}

// CreateSystemCategory создает категорию без владельца (доступно администратору)
func (s *BudgetService) CreateSystemCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	return s.createCategory(ctx, nil, in)
}

func (s *BudgetService) createCategory(ctx context.Context, owner *int64, in CategoryInput) (*models.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, ValidationError(err)
	}

	category := &models.Category{
		UserID:    owner,
		Name:      in.Name,
		Kind:      in.Kind,
		CreatedAt: s.timestamp(),
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ConflictError("Category with this name already exists.", err)
		}
		return nil, InternalError("failed to create category", err)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.Int64("category_id", category.ID),
		slog.Bool("system", category.IsSystem()))

	return category, nil
}

// DeleteCategory удаляет категорию пользователя
func (s *BudgetService) DeleteCategory(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return NotFoundError("Category not found.", err)
		case errors.Is(err, storage.ErrInUse):
			return ConflictError("Category is used by transactions.", err)
		}
		return InternalError("failed to delete category", err)
	}
	return nil
}

// visibleCategory возвращает категорию, если пользователь может ее использовать
// с транзакцией или бюджетом данного типа
func (s *BudgetService) visibleCategory(ctx context.Context, userID, id int64, kind models.TransactionType) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ValidationError(errCategoryNotFound)
		}
		return nil, InternalError("failed to get category", err)
	}

	if !category.IsSystem() && *category.UserID != userID {
		return nil, ValidationError(errCategoryNotFound)
	}

	if category.Kind != kind {
		return nil, ValidationError(errors.New("category_id: category kind does not match transaction type"))
	}

	return category, nil
}
