package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/services"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

// ListTransactions обрабатывает GET /api/v1/transactions
// ?from=&to=&type=&category_id=&limit=&offset=
func (h *BudgetHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	filter := models.TransactionFilter{UserID: id.UserID}
	q := r.URL.Query()

	if filter.From, ok = h.timeParam(w, r, "from"); !ok {
		return
	}
	if filter.To, ok = h.timeParam(w, r, "to"); !ok {
		return
	}

	if raw := q.Get("type"); raw != "" {
		typ, err := models.ParseTransactionType(raw)
		if err != nil {
			h.sendError(w, "validation", "type: "+err.Error(), http.StatusBadRequest)
			return
		}
		filter.Type = &typ
	}

	if raw := q.Get("category_id"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.sendError(w, "validation", "category_id: must be an integer", http.StatusBadRequest)
			return
		}
		filter.CategoryID = &categoryID
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", services.DefaultPageSize); err != nil {
		h.sendError(w, "validation", err.Error(), http.StatusBadRequest)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		h.sendError(w, "validation", err.Error(), http.StatusBadRequest)
		return
	}

	txs, total, err := h.budgets.ListTransactions(r.Context(), filter)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = services.DefaultPageSize
	}
	if limit > services.MaxPageSize {
		limit = services.MaxPageSize
	}

	resp := api.TransactionList{
		Items:  make([]api.Transaction, 0, len(txs)),
		Total:  total,
		Limit:  limit,
		Offset: filter.Offset,
	}
	for _, tx := range txs {
		resp.Items = append(resp.Items, toAPITransaction(tx))
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// GetTransaction обрабатывает GET /api/v1/transactions/{id}
func (h *BudgetHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	txID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	tx, err := h.budgets.GetTransaction(r.Context(), id.UserID, txID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, toAPITransaction(tx), http.StatusOK)
}

// CreateTransaction обрабатывает POST /api/v1/transactions
func (h *BudgetHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req api.TransactionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.budgets.CreateTransaction(r.Context(), id.UserID, transactionInput(req))
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, toAPITransaction(tx), http.StatusCreated)
}

// UpdateTransaction обрабатывает PUT /api/v1/transactions/{id}
func (h *BudgetHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	txID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req api.TransactionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.budgets.UpdateTransaction(r.Context(), id.UserID, txID, transactionInput(req))
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, toAPITransaction(tx), http.StatusOK)
}

// DeleteTransaction обрабатывает DELETE /api/v1/transactions/{id}
func (h *BudgetHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	txID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.budgets.DeleteTransaction(r.Context(), id.UserID, txID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func transactionInput(req api.TransactionRequest) services.TransactionInput {
	var occurredAt time.Time
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	return services.TransactionInput{
		OccurredAt:        occurredAt,
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
		CategoryID:        req.CategoryID,
		Type:              models.TransactionType(req.Type),
		Description:       req.Description,
		Amount:            req.Amount,
	}
}
