package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/budgetkeeper/internal/server/services"
	"github.com/iudanet/budgetkeeper/internal/validation"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

// AuthHandler обрабатывает запросы регистрации, входа, выхода и активации
type AuthHandler struct {
	responder
	accounts *services.AccountService
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		accounts:  accounts,
	}
}

// Register обрабатывает POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), validation.Registration{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, api.RegisterResponse{
		ID:      user.ID,
		Email:   user.Email,
		Message: "Registration successful. Check your email to activate the account.",
	}, http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, api.LoginResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt,
		User:      toAPIUser(res.User),
	}, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout.
// Предъявленный токен заносится в реестр отозванных до истечения срока.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.accounts.Logout(r.Context(), id.Token, id.ExpiresAt); err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged out", slog.Int64("user_id", id.UserID))
	w.WriteHeader(http.StatusNoContent)
}

// Activate обрабатывает GET /api/v1/auth/activate?token=
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Activate(r.Context(), r.URL.Query().Get("token")); err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: "Account activated."}, http.StatusOK)
}

// Me обрабатывает GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	user, err := h.accounts.Profile(r.Context(), id.UserID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, toAPIUser(user), http.StatusOK)
}
