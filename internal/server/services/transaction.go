package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/storage"
	rules "github.com/iudanet/budgetkeeper/internal/validation"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// TransactionInput данные транзакции для создания и изменения
type TransactionInput struct {
	OccurredAt        time.Time              `json:"occurred_at"`
	ExpectedUpdatedAt *time.Time             `json:"expected_updated_at"`
	CategoryID        *int64                 `json:"category_id"`
	Type              models.TransactionType `json:"type"`
	Description       string                 `json:"description"`
	Amount            int64                  `json:"amount"`
}

// Validate проверяет тип, сумму и описание
func (in TransactionInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Type, validation.Required, rules.TransactionTypeRule),
		validation.Field(&in.Amount, validation.Required, rules.PositiveAmount),
		validation.Field(&in.Description, validation.Length(0, 255)),
	)
}

// ListTransactions страница транзакций пользователя и общее количество
func (s *BudgetService) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int64, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultPageSize
	case filter.Limit > MaxPageSize:
		filter.Limit = MaxPageSize
	}
	if filter.Offset < 0 {
		return nil, 0, ValidationError(errors.New("offset: must be no less than 0"))
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, 0, ValidationError(errors.New("type: must be one of income, expense"))
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, 0, ValidationError(errors.New("from: must be before to"))
	}

	txs, total, err := s.store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, 0, InternalError("failed to list transactions", err)
	}

	return txs, total, nil
}

// GetTransaction транзакция пользователя
func (s *BudgetService) GetTransaction(ctx context.Context, userID, id int64) (*models.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError("Transaction not found.", err)
		}
		return nil, InternalError("failed to get transaction", err)
	}
	return tx, nil
}

// CreateTransaction создает транзакцию и проверяет бюджеты, если это расход
func (s *BudgetService) CreateTransaction(ctx context.Context, userID int64, in TransactionInput) (*models.Transaction, error) {
	if err := s.checkTransactionInput(ctx, userID, in); err != nil {
		return nil, err
	}

	now := s.timestamp()
	tx := &models.Transaction{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		OccurredAt:  in.OccurredAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = now
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ValidationError(errCategoryNotFound)
		}
		return nil, InternalError("failed to create transaction", err)
	}

	s.logger.InfoContext(ctx, "transaction created",
		slog.Int64("transaction_id", tx.ID),
		slog.String("type", string(tx.Type)))

	s.afterExpenseWrite(ctx, tx)

	return tx, nil
}

// UpdateTransaction перезаписывает транзакцию (побеждает последняя запись).
// Если задан ExpectedUpdatedAt и он не совпадает с сохраненным, возвращает Conflict.
func (s *BudgetService) UpdateTransaction(ctx context.Context, userID, id int64, in TransactionInput) (*models.Transaction, error) {
	if err := s.checkTransactionInput(ctx, userID, in); err != nil {
		return nil, err
	}

	tx, err := s.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	tx.CategoryID = in.CategoryID
	tx.Type = in.Type
	tx.Amount = in.Amount
	tx.Description = in.Description
	if !in.OccurredAt.IsZero() {
		tx.OccurredAt = in.OccurredAt
	}
	tx.UpdatedAt = s.timestamp()

	if err := s.store.UpdateTransaction(ctx, tx, in.ExpectedUpdatedAt); err != nil {
		switch {
		case errors.Is(err, storage.ErrStale):
			return nil, ConflictError("Transaction was modified by another request.", err)
		case errors.Is(err, storage.ErrNotFound):
			return nil, NotFoundError("Transaction not found.", err)
		}
		return nil, InternalError("failed to update transaction", err)
	}

	s.afterExpenseWrite(ctx, tx)

	return tx, nil
}

// DeleteTransaction удаляет транзакцию пользователя
func (s *BudgetService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NotFoundError("Transaction not found.", err)
		}
		return InternalError("failed to delete transaction", err)
	}
	return nil
}

func (s *BudgetService) checkTransactionInput(ctx context.Context, userID int64, in TransactionInput) error {
	if err := in.Validate(); err != nil {
		return ValidationError(err)
	}
	if in.CategoryID != nil {
		if _, err := s.visibleCategory(ctx, userID, *in.CategoryID, in.Type); err != nil {
			return err
		}
	}
	return nil
}

// afterExpenseWrite запускает проверку бюджетов; запись транзакции уже состоялась,
// поэтому ошибка проверки только логируется
func (s *BudgetService) afterExpenseWrite(ctx context.Context, tx *models.Transaction) {
	if tx.Type != models.TransactionExpense {
		return
	}
	if _, err := s.EvaluateBudgets(ctx, tx.UserID, tx.OccurredAt, tx.CategoryID); err != nil {
		s.logger.ErrorContext(ctx, "budget evaluation failed",
			slog.Int64("transaction_id", tx.ID),
			slog.Any("error", err))
	}
}
