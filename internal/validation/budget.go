package validation

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/iudanet/budgetkeeper/internal/models"
)

// MaxNameLen предельная длина имени категории или цели
const MaxNameLen = 64

// NameRules правила для имен категорий и целей
var NameRules = []validation.Rule{
	validation.Required,
	validation.Length(1, MaxNameLen),
}

// PositiveAmount сумма в минимальных единицах, строго больше нуля
var PositiveAmount = validation.Min(int64(1))

// MonthRule номер месяца 1..12
var MonthRule = validation.By(func(value interface{}) error {
	m, _ := value.(int)
	if m < 1 || m > 12 {
		return fmt.Errorf("must be between 1 and 12")
	}
	return nil
})

// YearRule разумные границы года
var YearRule = validation.By(func(value interface{}) error {
	y, _ := value.(int)
	if y < 1970 || y > 9999 {
		return fmt.Errorf("must be between 1970 and 9999")
	}
	return nil
})

// TransactionTypeRule допускает только income и expense
var TransactionTypeRule = validation.By(func(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case models.TransactionType:
		s = string(v)
	}
	if _, err := models.ParseTransactionType(s); err != nil {
		return fmt.Errorf("must be one of %s, %s", models.TransactionIncome, models.TransactionExpense)
	}
	return nil
})
