package api

import "time"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse представляет ответ с bearer токеном
type LoginResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"` // всегда "Bearer"
	User      User      `json:"user"`
}

// User публичные данные учетной записи
type User struct {
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	ID        int64      `json:"id"`
	IsActive  bool       `json:"is_active"`
}

// UserList список пользователей для администратора
type UserList struct {
	Users []User `json:"users"`
}

// UpdateUserRequest изменение роли и/или активности; отсутствующие поля не меняются
type UpdateUserRequest struct {
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// MessageResponse ответ с текстовым сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // категория ошибки
	Message string `json:"message,omitempty"` // сообщение для пользователя
}
