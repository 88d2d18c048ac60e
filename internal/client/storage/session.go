package storage

import (
	"context"
	"time"
)

// SessionStore хранит текущую сессию клиента.
// Токен хранится как есть: bbolt файл создается с правами 0600.
type SessionStore interface {
	// SaveSession сохраняет сессию, заменяя предыдущую
	SaveSession(ctx context.Context, session *Session) error

	// GetSession возвращает сохраненную сессию или ErrSessionNotFound
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession удаляет сессию (logout). Отсутствие сессии не ошибка.
	DeleteSession(ctx context.Context) error
}

// Session данные входа, сохраняемые между запусками клиента
type Session struct {
	ExpiresAt time.Time `json:"expires_at"`
	Server    string    `json:"server"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
}

// Expired истек ли токен сессии на момент now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
