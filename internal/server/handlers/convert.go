package handlers

import (
	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/services"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role.String(),
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

func toAPICategory(c *models.Category) api.Category {
	return api.Category{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Kind:      string(c.Kind),
		System:    c.IsSystem(),
		CreatedAt: c.CreatedAt,
	}
}

func toAPITransaction(tx *models.Transaction) api.Transaction {
	return api.Transaction{
		ID:          tx.ID,
		CategoryID:  tx.CategoryID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Description: tx.Description,
		OccurredAt:  tx.OccurredAt,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func toAPIGoal(g *models.Goal) api.Goal {
	return api.Goal{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Progress:      g.Progress(),
		Deadline:      g.Deadline,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func toAPIBudget(b *models.MonthlyBudget) api.Budget {
	return api.Budget{
		ID:          b.ID,
		CategoryID:  b.CategoryID,
		Year:        b.Year,
		Month:       b.Month,
		LimitAmount: b.LimitAmount,
		CreatedAt:   b.CreatedAt,
	}
}

func toAPIAlert(a *models.Alert) api.Alert {
	return api.Alert{
		ID:          a.ID,
		BudgetID:    a.BudgetID,
		Message:     a.Message,
		Spent:       a.Spent,
		LimitAmount: a.LimitAmount,
		IsRead:      a.IsRead,
		CreatedAt:   a.CreatedAt,
	}
}

func toAPIDashboard(d *services.Dashboard) api.Dashboard {
	out := api.Dashboard{
		Year:       d.Year,
		Month:      d.Month,
		Income:     d.Income,
		Expense:    d.Expense,
		Balance:    d.Balance,
		ByCategory: make([]api.CategoryAmount, 0, len(d.ByCategory)),
		Budgets:    make([]api.BudgetProgress, 0, len(d.Budgets)),
		Goals:      make([]api.Goal, 0, len(d.Goals)),
	}

	for _, c := range d.ByCategory {
		out.ByCategory = append(out.ByCategory, api.CategoryAmount{CategoryID: c.CategoryID, Name: c.Name, Amount: c.Amount})
	}
	for _, b := range d.Budgets {
		out.Budgets = append(out.Budgets, api.BudgetProgress{
			Budget:    toAPIBudget(b.Budget),
			Spent:     b.Spent,
			Remaining: b.Budget.LimitAmount - b.Spent,
		})
	}
	for _, g := range d.Goals {
		out.Goals = append(out.Goals, toAPIGoal(g))
	}

	return out
}
