package handlers

import (
	"net/http"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/services"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

// ListGoals обрабатывает GET /api/v1/goals
func (h *BudgetHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	goals, err := h.budgets.ListGoals(r.Context(), id.UserID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	out := make([]api.Goal, 0, len(goals))
	for _, g := range goals {
		out = append(out, toAPIGoal(g))
	}
	h.sendJSON(w, out, http.StatusOK)
}

// GetGoal обрабатывает GET /api/v1/goals/{id}
func (h *BudgetHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	h.withGoal(w, r, http.StatusOK, func(userID, goalID int64) (*models.Goal, error) {
		return h.budgets.GetGoal(r.Context(), userID, goalID)
	})
}

// CreateGoal обрабатывает POST /api/v1/goals
func (h *BudgetHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req api.GoalRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.budgets.CreateGoal(r.Context(), id.UserID, goalInput(req))
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, toAPIGoal(goal), http.StatusCreated)
}

// UpdateGoal обрабатывает PUT /api/v1/goals/{id}
func (h *BudgetHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req api.GoalRequest
	h.withGoal(w, r, http.StatusOK, func(userID, goalID int64) (*models.Goal, error) {
		if !h.decodeJSON(w, r, &req) {
			return nil, nil
		}
		return h.budgets.UpdateGoal(r.Context(), userID, goalID, goalInput(req))
	})
}

// Contribute обрабатывает POST /api/v1/goals/{id}/contribute
func (h *BudgetHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	var req api.ContributeRequest
	h.withGoal(w, r, http.StatusOK, func(userID, goalID int64) (*models.Goal, error) {
		if !h.decodeJSON(w, r, &req) {
			return nil, nil
		}
		return h.budgets.Contribute(r.Context(), userID, goalID, req.Amount)
	})
}

// DeleteGoal обрабатывает DELETE /api/v1/goals/{id}
func (h *BudgetHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	goalID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.budgets.DeleteGoal(r.Context(), id.UserID, goalID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// withGoal общий путь для операций над одной целью.
// fn возвращает (nil, nil), если ответ уже отправлен.
func (h *BudgetHandler) withGoal(w http.ResponseWriter, r *http.Request, status int, fn func(userID, goalID int64) (*models.Goal, error)) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	goalID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	goal, err := fn(id.UserID, goalID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	if goal == nil {
		return
	}
	h.sendJSON(w, toAPIGoal(goal), status)
}

func goalInput(req api.GoalRequest) services.GoalInput {
	return services.GoalInput{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
	}
}
