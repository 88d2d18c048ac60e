// Package services содержит бизнес-логику поверх хранилища: учетные записи,
// категории, транзакции, цели, бюджеты и отчеты.
package services

import (
	"errors"
	"fmt"
)

// Kind категория ошибки сервиса
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error ошибка сервиса. Message безопасно показывать клиенту,
// Err хранит причину для логов.
type Error struct {
	Err     error
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ValidationError некорректный ввод
func ValidationError(err error) *Error {
	return newError(KindValidation, err.Error(), err)
}

// ConflictError нарушение уникальности или ссылочной целостности
func ConflictError(message string, err error) *Error {
	return newError(KindConflict, message, err)
}

// UnauthorizedError ошибка аутентификации
func UnauthorizedError(message string) *Error {
	return newError(KindUnauthorized, message, nil)
}

// ForbiddenError действие запрещено для вызывающего
func ForbiddenError(message string) *Error {
	return newError(KindForbidden, message, nil)
}

// NotFoundError запись не найдена или не принадлежит вызывающему
func NotFoundError(message string, err error) *Error {
	return newError(KindNotFound, message, err)
}

// InternalError непредвиденная ошибка
func InternalError(message string, err error) *Error {
	return newError(KindInternal, message, err)
}

// KindOf возвращает категорию ошибки; ошибки не из этого пакета считаются внутренними
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
