package handlers

import (
	"net/http"

	"github.com/iudanet/budgetkeeper/pkg/api"
)

// Dashboard обрабатывает GET /api/v1/dashboard?year=&month=
func (h *BudgetHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	year, month, ok := h.period(w, r)
	if !ok {
		return
	}

	dashboard, err := h.budgets.Dashboard(r.Context(), id.UserID, year, month)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, toAPIDashboard(dashboard), http.StatusOK)
}

// MonthlyReport обрабатывает GET /api/v1/reports/monthly?months=N (по умолчанию 12)
func (h *BudgetHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	months, err := queryInt(r, "months", 12)
	if err != nil {
		h.sendError(w, "validation", err.Error(), http.StatusBadRequest)
		return
	}

	totals, err := h.budgets.MonthlyReport(r.Context(), id.UserID, months)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	resp := api.MonthlyReport{Months: make([]api.MonthTotal, 0, len(totals))}
	for _, t := range totals {
		resp.Months = append(resp.Months, api.MonthTotal{
			Month:   t.Month,
			Income:  t.Income,
			Expense: t.Expense,
			Balance: t.Income - t.Expense,
		})
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// ExportReport обрабатывает POST /api/v1/reports/export?year=&month=
func (h *BudgetHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	year, month, ok := h.period(w, r)
	if !ok {
		return
	}

	res, err := h.budgets.ExportMonth(r.Context(), id.UserID, year, month)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, api.ExportResponse{Key: res.Key, URL: res.URL, Rows: res.Rows}, http.StatusOK)
}
