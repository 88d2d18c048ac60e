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

const transactionColumns = `id, user_id, category_id, type, amount, description, occurred_at, created_at, updated_at`

// CreateTransaction creates transaction and sets its ID
func (s *Storage) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, category_id, type, amount, description, occurred_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	id, err := s.insertReturningID(ctx, query,
		tx.UserID,
		tx.CategoryID,
		string(tx.Type),
		tx.Amount,
		tx.Description,
		tx.OccurredAt.UTC(),
		tx.CreatedAt.UTC(),
		tx.UpdatedAt.UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	tx.ID = id
	return nil
}

// GetTransaction retrieves user's transaction
func (s *Storage) GetTransaction(ctx context.Context, userID, id int64) (*models.Transaction, error) {
	tx := &models.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`

	if err := s.db.GetContext(ctx, tx, s.db.Rebind(query), id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// ListTransactions returns a page of transactions and total count
func (s *Storage) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int64, error) {
	where := []string{"user_id = ?"}
	args := []any{filter.UserID}

	if filter.From != nil {
		where = append(where, "occurred_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where = append(where, "occurred_at < ?")
		args = append(args, filter.To.UTC())
	}
	if filter.Type != nil {
		where = append(where, "type = ?")
		args = append(args, string(*filter.Type))
	}
	if filter.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE ` + cond
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(countQuery), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + cond +
		` ORDER BY occurred_at DESC, id DESC LIMIT ? OFFSET ?`
	pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)

	txs := []*models.Transaction{}
	if err := s.db.SelectContext(ctx, &txs, s.db.Rebind(query), pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return txs, total, nil
}

// UpdateTransaction overwrites mutable fields of user's transaction
func (s *Storage) UpdateTransaction(ctx context.Context, tx *models.Transaction, expectedUpdatedAt *time.Time) error {
	query := `
		UPDATE transactions
		SET category_id = ?, type = ?, amount = ?, description = ?, occurred_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	args := []any{
		tx.CategoryID,
		string(tx.Type),
		tx.Amount,
		tx.Description,
		tx.OccurredAt.UTC(),
		tx.UpdatedAt.UTC(),
		tx.ID,
		tx.UserID,
	}

	if expectedUpdatedAt != nil {
		query += ` AND updated_at = ?`
		args = append(args, expectedUpdatedAt.UTC())
	}

	n, err := s.execAffected(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if n == 0 {
		if expectedUpdatedAt == nil {
			return storage.ErrNotFound
		}
		// отличаем отсутствующую запись от устаревшей версии
		if _, err := s.GetTransaction(ctx, tx.UserID, tx.ID); err != nil {
			return err
		}
		return storage.ErrStale
	}

	return nil
}

// DeleteTransaction deletes user's transaction
func (s *Storage) DeleteTransaction(ctx context.Context, userID, id int64) error {
	n, err := s.execAffected(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}
