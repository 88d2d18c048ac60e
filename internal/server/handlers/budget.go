package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/services"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

// BudgetHandler обрабатывает запросы категорий, транзакций, целей, бюджетов и отчетов
type BudgetHandler struct {
	responder
	budgets *services.BudgetService
}

// NewBudgetHandler создает handler для бюджетных эндпоинтов
func NewBudgetHandler(logger *slog.Logger, budgets *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		responder: responder{logger: logger},
		budgets:   budgets,
	}
}

// ListSystemCategories обрабатывает GET /api/v1/categories/system
func (h *BudgetHandler) ListSystemCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.budgets.ListSystemCategories(r.Context())
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, categoryList(categories), http.StatusOK)
}

// ListCategories обрабатывает GET /api/v1/categories
func (h *BudgetHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	categories, err := h.budgets.ListCategories(r.Context(), id.UserID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, categoryList(categories), http.StatusOK)
}

// CreateCategory обрабатывает POST /api/v1/categories
func (h *BudgetHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req api.CategoryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	category, err := h.budgets.CreateCategory(r.Context(), id.UserID, services.CategoryInput{
		Name: req.Name,
		Kind: models.TransactionType(req.Kind),
	})
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, toAPICategory(category), http.StatusCreated)
}

// DeleteCategory обрабатывает DELETE /api/v1/categories/{id}
func (h *BudgetHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	categoryID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.budgets.DeleteCategory(r.Context(), id.UserID, categoryID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func categoryList(categories []*models.Category) []api.Category {
	out := make([]api.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, toAPICategory(c))
	}
	return out
}

// ListBudgets обрабатывает GET /api/v1/budgets?year=&month=
func (h *BudgetHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	year, month, ok := h.period(w, r)
	if !ok {
		return
	}

	budgets, err := h.budgets.ListBudgets(r.Context(), id.UserID, year, month)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	out := make([]api.Budget, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toAPIBudget(b))
	}
	h.sendJSON(w, out, http.StatusOK)
}

// CreateBudget обрабатывает POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req api.BudgetRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	budget, err := h.budgets.CreateBudget(r.Context(), id.UserID, services.BudgetInput{
		CategoryID:  req.CategoryID,
		Year:        req.Year,
		Month:       req.Month,
		LimitAmount: req.LimitAmount,
	})
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, toAPIBudget(budget), http.StatusCreated)
}

// DeleteBudget обрабатывает DELETE /api/v1/budgets/{id}
func (h *BudgetHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	budgetID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.budgets.DeleteBudget(r.Context(), id.UserID, budgetID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAlerts обрабатывает GET /api/v1/alerts?unread=true
func (h *BudgetHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var unread bool
	if raw := r.URL.Query().Get("unread"); raw != "" {
		var err error
		if unread, err = strconv.ParseBool(raw); err != nil {
			h.sendError(w, "validation", "unread: must be true or false", http.StatusBadRequest)
			return
		}
	}

	alerts, err := h.budgets.ListAlerts(r.Context(), id.UserID, unread)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	out := make([]api.Alert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAPIAlert(a))
	}
	h.sendJSON(w, out, http.StatusOK)
}

// MarkAlertRead обрабатывает POST /api/v1/alerts/{id}/read
func (h *BudgetHandler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	alertID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.budgets.MarkAlertRead(r.Context(), id.UserID, alertID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// period читает year и month из query; отсутствующие значения равны нулю
func (h *BudgetHandler) period(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		h.sendError(w, "validation", err.Error(), http.StatusBadRequest)
		return 0, 0, false
	}
	month, err := queryInt(r, "month", 0)
	if err != nil {
		h.sendError(w, "validation", err.Error(), http.StatusBadRequest)
		return 0, 0, false
	}
	return year, month, true
}

// timeParam разбирает необязательный параметр даты
func (h *BudgetHandler) timeParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := parseDate(raw)
	if err != nil {
		h.sendError(w, "validation", name+": "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &t, true
}
