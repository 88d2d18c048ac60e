package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TransactionType тип движения денег
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid сообщает, является ли тип допустимым
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense:
		return true
	default:
		return false
	}
}

// ParseTransactionType разбирает тип транзакции из строки
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return t, nil
}

// Category категория доходов или расходов.
// UserID == nil означает системную категорию, видимую всем.
type Category struct {
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UserID    *int64          `db:"user_id" json:"user_id,omitempty"`
	Name      string          `db:"name" json:"name"`
	Kind      TransactionType `db:"kind" json:"kind"`
	ID        int64           `db:"id" json:"id"`
}

// IsSystem сообщает, является ли категория системной
func (c *Category) IsSystem() bool {
	return c.UserID == nil
}

// Transaction доход или расход пользователя.
// Amount хранится в минимальных единицах валюты (копейки, центы).
type Transaction struct {
	OccurredAt  time.Time       `db:"occurred_at" json:"occurred_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
	CategoryID  *int64          `db:"category_id" json:"category_id,omitempty"`
	Type        TransactionType `db:"type" json:"type"`
	Description string          `db:"description" json:"description"`
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Amount      int64           `db:"amount" json:"amount"`
}

// TransactionFilter параметры выборки транзакций
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	Type       *TransactionType
	CategoryID *int64
	UserID     int64
	Limit      int
	Offset     int
}

// Goal цель накопления
type Goal struct {
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	Deadline      *time.Time `db:"deadline" json:"deadline,omitempty"`
	Name          string     `db:"name" json:"name"`
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	TargetAmount  int64      `db:"target_amount" json:"target_amount"`
	CurrentAmount int64      `db:"current_amount" json:"current_amount"`
}

// Progress доля достигнутой суммы в процентах, не более 100
func (g *Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := float64(g.CurrentAmount) / float64(g.TargetAmount) * 100
	if p > 100 {
		return 100
	}
	return p
}

// MonthlyBudget лимит расходов на месяц.
// CategoryID == nil означает общий бюджет на все расходы месяца.
type MonthlyBudget struct {
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	CategoryID  *int64    `db:"category_id" json:"category_id,omitempty"`
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Year        int       `db:"year" json:"year"`
	Month       int       `db:"month" json:"month"`
	LimitAmount int64     `db:"limit_amount" json:"limit_amount"`
}

// Alert уведомление о превышении бюджета
type Alert struct {
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Message     string    `db:"message" json:"message"`
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	BudgetID    int64     `db:"budget_id" json:"budget_id"`
	Spent       int64     `db:"spent" json:"spent"`
	LimitAmount int64     `db:"limit_amount" json:"limit_amount"`
	IsRead      bool      `db:"is_read" json:"is_read"`
}

// CategoryTotal сумма по категории за период
type CategoryTotal struct {
	CategoryID *int64 `db:"category_id"`
	Name       string `db:"name"`
	Amount     int64  `db:"amount"`
}

// MonthTotal доходы и расходы за месяц, Month в формате YYYY-MM
type MonthTotal struct {
	Month   string `db:"month"`
	Income  int64  `db:"income"`
	Expense int64  `db:"expense"`
}

// MonthRange возвращает границы месяца [start, end) в UTC
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// FormatAmount форматирует сумму в минимальных единицах как "1234.56"
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// ParseAmount разбирает десятичную сумму ("12", "12.5", "-0.99") в минимальные единицы
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, hasFrac := strings.Cut(strings.TrimPrefix(s, "-"), ".")

	if !digitsOnly(whole) || (hasFrac && (!digitsOnly(frac) || len(frac) > 2)) {
		return 0, fmt.Errorf("invalid amount %q: expected format 1234.56", s)
	}
	if len(frac) == 1 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	var cents int64
	if frac != "" {
		cents, _ = strconv.ParseInt(frac, 10, 64)
	}

	minor := units*100 + cents
	if strings.HasPrefix(s, "-") {
		minor = -minor
	}
	return minor, nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
