package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/auth/register", api.RegisterRequest{
		Email:           "New@Example.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decode[api.RegisterResponse](t, w)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.NotEmpty(t, resp.Message)

	require.Len(t, env.mail.SendCalls(), 1)
}

func TestAuthHandler_Register_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	env.user(t, "taken@example.com", models.RoleUser)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{
			name:   "invalid JSON",
			body:   "{not json",
			status: http.StatusBadRequest,
			code:   "validation",
		},
		{
			name:   "unknown field",
			body:   `{"email":"a@example.com","username":"a"}`,
			status: http.StatusBadRequest,
			code:   "validation",
		},
		{
			name:   "weak password",
			body:   api.RegisterRequest{Email: "a@example.com", Password: "weak", ConfirmPassword: "weak"},
			status: http.StatusBadRequest,
			code:   "validation",
		},
		{
			name:   "mismatch",
			body:   api.RegisterRequest{Email: "a@example.com", Password: testPassword, ConfirmPassword: testPassword + "x"},
			status: http.StatusBadRequest,
			code:   "validation",
		},
		{
			name:   "duplicate email",
			body:   api.RegisterRequest{Email: "TAKEN@example.com", Password: testPassword, ConfirmPassword: testPassword},
			status: http.StatusConflict,
			code:   "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/auth/register", tt.body, nil)
			requireError(t, w, tt.status, tt.code)
		})
	}

	assert.Empty(t, env.mail.SendCalls())
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.user(t, "login@example.com", models.RolePro)

	w := env.do(t, http.MethodPost, "/auth/login", api.LoginRequest{Email: "login@example.com", Password: testPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.LoginResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.False(t, resp.ExpiresAt.IsZero())
	assert.Equal(t, id.UserID, resp.User.ID)
	assert.Equal(t, "Pro", resp.User.Role)
	require.NotNil(t, resp.User.LastLogin)
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	env := newTestEnv(t, nil)
	env.user(t, "known@example.com", models.RoleUser)

	unknown := env.do(t, http.MethodPost, "/auth/login", api.LoginRequest{Email: "ghost@example.com", Password: testPassword}, nil)
	wrong := env.do(t, http.MethodPost, "/auth/login", api.LoginRequest{Email: "known@example.com", Password: "Wr0ng!Pass"}, nil)

	unknownResp := requireError(t, unknown, http.StatusUnauthorized, "unauthorized")
	wrongResp := requireError(t, wrong, http.StatusUnauthorized, "unauthorized")
	assert.Equal(t, unknownResp.Message, wrongResp.Message)

	empty := env.do(t, http.MethodPost, "/auth/login", api.LoginRequest{}, nil)
	requireError(t, empty, http.StatusBadRequest, "validation")
}

func TestAuthHandler_ActivateThenLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/auth/register", api.RegisterRequest{
		Email:           "fresh@example.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", api.LoginRequest{Email: "fresh@example.com", Password: testPassword}, nil)
	resp := requireError(t, w, http.StatusUnauthorized, "unauthorized")
	assert.Equal(t, "Account is not activated.", resp.Message)

	calls := env.mail.SendCalls()
	require.Len(t, calls, 1)
	_, activation, found := strings.Cut(calls[0].Msg.Body, "?token=")
	require.True(t, found)
	activation = strings.TrimSpace(activation)

	w = env.do(t, http.MethodGet, "/auth/activate?token=bogus", nil, nil)
	requireError(t, w, http.StatusNotFound, "not_found")

	w = env.do(t, http.MethodGet, "/auth/activate", nil, nil)
	requireError(t, w, http.StatusBadRequest, "validation")

	w = env.do(t, http.MethodGet, "/auth/activate?token="+activation, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/auth/login", api.LoginRequest{Email: "fresh@example.com", Password: testPassword}, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.user(t, "bye@example.com", models.RoleUser)

	w := env.do(t, http.MethodPost, "/auth/logout", nil, id)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	revoked, err := env.store.IsTokenRevoked(context.Background(), id.Token)
	require.NoError(t, err)
	assert.True(t, revoked)

	w = env.do(t, http.MethodPost, "/auth/logout", nil, nil)
	requireError(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestAuthHandler_Me(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.user(t, "me@example.com", models.RoleAdmin)

	w := env.do(t, http.MethodGet, "/me", nil, id)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[api.User](t, w)
	assert.Equal(t, id.UserID, resp.ID)
	assert.Equal(t, "me@example.com", resp.Email)
	assert.Equal(t, "Admin", resp.Role)
	assert.True(t, resp.IsActive)

	w = env.do(t, http.MethodGet, "/me", nil, nil)
	requireError(t, w, http.StatusUnauthorized, "unauthorized")
}
