package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/iudanet/budgetkeeper/internal/models"
)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen bcrypt учитывает только первые 72 байта
	MaxPasswordLen = 72
	// MaxEmailLen ограничение длины email
	MaxEmailLen = 254
)

// Ошибки политики паролей
var (
	ErrPasswordTooShort  = fmt.Errorf("must be at least %d characters long", MinPasswordLen)
	ErrPasswordTooLong   = fmt.Errorf("must not exceed %d bytes", MaxPasswordLen)
	ErrPasswordNoUpper   = errors.New("must contain an uppercase letter")
	ErrPasswordNoLower   = errors.New("must contain a lowercase letter")
	ErrPasswordNoDigit   = errors.New("must contain a digit")
	ErrPasswordNoSpecial = errors.New("must contain a special character")
	ErrPasswordMismatch  = errors.New("passwords do not match")
)

// Password правило ozzo-validation для политики паролей
var Password = validation.By(checkPassword)

// EmailRules набор правил для email
var EmailRules = []validation.Rule{
	validation.Required,
	validation.Length(3, MaxEmailLen),
	is.Email,
}

// NormalizeEmail приводит email к каноничному виду.
// Уникальность email проверяется без учета регистра.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет формат email
func ValidateEmail(email string) error {
	return validation.Validate(email, EmailRules...)
}

// ValidatePassword проверяет пароль по политике:
// минимум 8 символов, заглавная и строчная буква, цифра и спецсимвол
func ValidatePassword(password string) error {
	return validation.Validate(password, validation.Required, Password)
}

// Registration данные формы регистрации
type Registration struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate проверяет форму регистрации целиком
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, EmailRules...),
		validation.Field(&r.Password, validation.Required, Password),
		validation.Field(&r.ConfirmPassword,
			validation.Required,
			validation.By(Equals(r.Password, ErrPasswordMismatch)),
		),
	)
}

// Equals возвращает правило, требующее точного совпадения строк
func Equals(expected string, err error) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != expected {
			return err
		}
		return nil
	}
}

// RoleRule допускает только роли из закрытого набора
var RoleRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := models.ParseRole(s); err != nil {
		return fmt.Errorf("must be one of %s, %s, %s", models.RoleAdmin, models.RolePro, models.RoleUser)
	}
	return nil
})

func checkPassword(value interface{}) error {
	password, _ := value.(string)
	if password == "" {
		return nil
	}

	if len([]rune(password)) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLen {
		return ErrPasswordTooLong
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case !upper:
		return ErrPasswordNoUpper
	case !lower:
		return ErrPasswordNoLower
	case !digit:
		return ErrPasswordNoDigit
	case !special:
		return ErrPasswordNoSpecial
	}

	return nil
}
