package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/services"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

// AdminHandler администрирование пользователей и системных категорий
type AdminHandler struct {
	responder
	accounts *services.AccountService
	budgets  *services.BudgetService
}

// NewAdminHandler создает handler для эндпоинтов /api/v1/admin
func NewAdminHandler(logger *slog.Logger, accounts *services.AccountService, budgets *services.BudgetService) *AdminHandler {
	return &AdminHandler{
		responder: responder{logger: logger},
		accounts:  accounts,
		budgets:   budgets,
	}
}

// ListUsers обрабатывает GET /api/v1/admin/users?role=&active=&limit=&offset=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter models.UserFilter

	if raw := q.Get("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			h.sendError(w, "validation", err.Error(), http.StatusBadRequest)
			return
		}
		filter.Role = &role
	}

	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.sendError(w, "validation", "active: must be true or false", http.StatusBadRequest)
			return
		}
		filter.IsActive = &active
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		h.sendError(w, "validation", err.Error(), http.StatusBadRequest)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		h.sendError(w, "validation", err.Error(), http.StatusBadRequest)
		return
	}

	users, err := h.accounts.ListUsers(r.Context(), filter)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	resp := api.UserList{Users: make([]api.User, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toAPIUser(u))
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// UpdateUser обрабатывает PATCH /api/v1/admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req api.UpdateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	var role *models.Role
	if req.Role != nil {
		parsed := models.Role(*req.Role)
		role = &parsed
	}

	user, err := h.accounts.UpdateUser(r.Context(), userID, role, req.IsActive)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, toAPIUser(user), http.StatusOK)
}

// DeleteUser обрабатывает DELETE /api/v1/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.identity(w, r)
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.accounts.DeleteUser(r.Context(), actor.UserID, userID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateSystemCategory обрабатывает POST /api/v1/admin/categories
func (h *AdminHandler) CreateSystemCategory(w http.ResponseWriter, r *http.Request) {
	var req api.CategoryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	category, err := h.budgets.CreateSystemCategory(r.Context(), services.CategoryInput{
		Name: req.Name,
		Kind: models.TransactionType(req.Kind),
	})
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, toAPICategory(category), http.StatusCreated)
}
