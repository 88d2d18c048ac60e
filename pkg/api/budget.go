package api

import "time"

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// CategoryRequest создание категории
type CategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // income | expense
}

// Category категория доходов или расходов
type Category struct {
	CreatedAt time.Time `json:"created_at"`
	UserID    *int64    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	System    bool      `json:"system"`
}

// TransactionRequest создание или изменение транзакции.
// ExpectedUpdatedAt включает оптимистическую проверку при изменении.
type TransactionRequest struct {
	OccurredAt        *time.Time `json:"occurred_at,omitempty"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
	CategoryID        *int64     `json:"category_id,omitempty"`
	Type              string     `json:"type"`
	Description       string     `json:"description,omitempty"`
	Amount            int64      `json:"amount"` // в минимальных единицах (центах)
}

// Transaction доход или расход
type Transaction struct {
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	ID          int64     `json:"id"`
	Amount      int64     `json:"amount"`
}

// TransactionList страница транзакций
type TransactionList struct {
	Items  []Transaction `json:"items"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// GoalRequest создание или изменение цели накопления
type GoalRequest struct {
	Deadline     *time.Time `json:"deadline,omitempty"`
	Name         string     `json:"name"`
	TargetAmount int64      `json:"target_amount"`
}

// ContributeRequest пополнение (или снятие при отрицательной сумме) цели
type ContributeRequest struct {
	Amount int64 `json:"amount"`
}

// Goal цель накопления
type Goal struct {
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Name          string     `json:"name"`
	ID            int64      `json:"id"`
	TargetAmount  int64      `json:"target_amount"`
	CurrentAmount int64      `json:"current_amount"`
	Progress      float64    `json:"progress"` // проценты, 0..100
}

// BudgetRequest создание месячного бюджета; без category_id - общий бюджет
type BudgetRequest struct {
	CategoryID  *int64 `json:"category_id,omitempty"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	LimitAmount int64  `json:"limit_amount"`
}

// Budget месячный бюджет
type Budget struct {
	CreatedAt   time.Time `json:"created_at"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	ID          int64     `json:"id"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	LimitAmount int64     `json:"limit_amount"`
}

// Alert уведомление о превышении бюджета
type Alert struct {
	CreatedAt   time.Time `json:"created_at"`
	Message     string    `json:"message"`
	ID          int64     `json:"id"`
	BudgetID    int64     `json:"budget_id"`
	Spent       int64     `json:"spent"`
	LimitAmount int64     `json:"limit_amount"`
	IsRead      bool      `json:"is_read"`
}

// CategoryAmount сумма расходов по категории
type CategoryAmount struct {
	CategoryID *int64 `json:"category_id,omitempty"`
	Name       string `json:"name"`
	Amount     int64  `json:"amount"`
}

// BudgetProgress исполнение бюджета
type BudgetProgress struct {
	Budget    Budget `json:"budget"`
	Spent     int64  `json:"spent"`
	Remaining int64  `json:"remaining"`
}

// Dashboard сводка за месяц
type Dashboard struct {
	ByCategory []CategoryAmount `json:"by_category"`
	Budgets    []BudgetProgress `json:"budgets"`
	Goals      []Goal           `json:"goals"`
	Year       int              `json:"year"`
	Month      int              `json:"month"`
	Income     int64            `json:"income"`
	Expense    int64            `json:"expense"`
	Balance    int64            `json:"balance"`
}

// MonthTotal доходы и расходы за месяц (YYYY-MM)
type MonthTotal struct {
	Month   string `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
	Balance int64  `json:"balance"`
}

// MonthlyReport динамика по месяцам
type MonthlyReport struct {
	Months []MonthTotal `json:"months"`
}

// ExportResponse ссылка на выгруженный отчет
type ExportResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}
