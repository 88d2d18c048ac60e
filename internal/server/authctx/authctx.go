// Package authctx переносит аутентифицированного вызывающего через context запроса
// от middleware к обработчикам.
package authctx

import (
	"context"
	"time"

	"github.com/iudanet/budgetkeeper/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

// identityKey ключ для хранения Identity в контексте
const identityKey contextKey = "identity"

// Identity аутентифицированный вызывающий, извлеченный из bearer токена
type Identity struct {
	ExpiresAt time.Time
	Email     string
	Token     string // исходная строка токена, нужна для отзыва при logout
	Role      models.Role
	UserID    int64
}

// WithIdentity кладет Identity в контекст запроса
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext извлекает Identity из контекста запроса
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}
