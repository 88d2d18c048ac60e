package models

import (
	"fmt"
	"time"
)

// Role определяет уровень доступа пользователя.
// Набор ролей закрыт: Admin, Pro, User.
type Role string

const (
	RoleAdmin Role = "Admin"
	RolePro   Role = "Pro"
	RoleUser  Role = "User"
)

// Roles возвращает все допустимые роли
func Roles() []Role {
	return []Role{RoleAdmin, RolePro, RoleUser}
}

// Valid сообщает, входит ли роль в закрытый набор
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePro, RoleUser:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole разбирает строковое значение роли.
// Сравнение регистрозависимое, как и в токене.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User представляет учетную запись пользователя
type User struct {
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
	ActivationToken  *string    `db:"activation_token" json:"-"`
	ResetToken       *string    `db:"reset_token" json:"-"`        // зарезервировано под сброс пароля
	ResetTokenExpiry *time.Time `db:"reset_token_expiry" json:"-"` // зарезервировано под сброс пароля
	LastLogin        *time.Time `db:"last_login" json:"last_login,omitempty"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	Role             Role       `db:"role" json:"role"`
	ID               int64      `db:"id" json:"id"`
	IsActive         bool       `db:"is_active" json:"is_active"`
}

// RevokedToken запись реестра отозванных bearer токенов.
// Token хранится в точности в том виде, в каком его предъявил клиент.
type RevokedToken struct {
	ExpiryDate time.Time `db:"expiry_date"`
	CreatedAt  time.Time `db:"created_at"`
	Token      string    `db:"token"`
}

// UserFilter параметры выборки пользователей для администратора
type UserFilter struct {
	Role     *Role
	IsActive *bool
	Limit    int
	Offset   int
}
