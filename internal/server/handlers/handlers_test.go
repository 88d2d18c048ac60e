package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/budgetkeeper/internal/crypto"
	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/authctx"
	"github.com/iudanet/budgetkeeper/internal/server/notify"
	"github.com/iudanet/budgetkeeper/internal/server/services"
	"github.com/iudanet/budgetkeeper/internal/server/storage/sqlstore"
	"github.com/iudanet/budgetkeeper/internal/server/token"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

const testPassword = "Str0ng!Pass"

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv настоящие сервисы поверх SQLite в памяти и chi роутер без middleware.
// Identity подставляется напрямую в контекст запроса.
type testEnv struct {
	store    *sqlstore.Storage
	accounts *services.AccountService
	budgets  *services.BudgetService
	router   chi.Router
	mail     *notify.SenderMock
}

type fakeUploader struct{}

func (fakeUploader) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	return "https://s3.local/" + key + "?signed", nil
}

func newTestEnv(t *testing.T, uploader services.ReportUploader) *testEnv {
	t.Helper()

	store, err := sqlstore.NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	logger := setupTestLogger()
	issuer := token.NewIssuer(token.Config{
		Issuer:        "budgetkeeper",
		Audience:      "budgetkeeper-api",
		Secret:        []byte("handler-secret"),
		ExpiryMinutes: 60,
	})
	mail := &notify.SenderMock{
		SendFunc: func(context.Context, notify.Message) error { return nil },
	}

	env := &testEnv{
		store:    store,
		accounts: services.NewAccountService(logger, store, store, issuer, crypto.NewHasher(bcrypt.MinCost), mail, "http://localhost/activate"),
		budgets:  services.NewBudgetService(logger, store, uploader),
		mail:     mail,
	}

	auth := NewAuthHandler(logger, env.accounts)
	admin := NewAdminHandler(logger, env.accounts, env.budgets)
	budget := NewBudgetHandler(logger, env.budgets)

	r := chi.NewRouter()
	r.Post("/auth/register", auth.Register)
	r.Post("/auth/login", auth.Login)
	r.Post("/auth/logout", auth.Logout)
	r.Get("/auth/activate", auth.Activate)
	r.Get("/me", auth.Me)

	r.Get("/admin/users", admin.ListUsers)
	r.Patch("/admin/users/{id}", admin.UpdateUser)
	r.Delete("/admin/users/{id}", admin.DeleteUser)
	r.Post("/admin/categories", admin.CreateSystemCategory)

	r.Get("/categories/system", budget.ListSystemCategories)
	r.Get("/categories", budget.ListCategories)
	r.Post("/categories", budget.CreateCategory)
	r.Delete("/categories/{id}", budget.DeleteCategory)

	r.Get("/transactions", budget.ListTransactions)
	r.Post("/transactions", budget.CreateTransaction)
	r.Get("/transactions/{id}", budget.GetTransaction)
	r.Put("/transactions/{id}", budget.UpdateTransaction)
	r.Delete("/transactions/{id}", budget.DeleteTransaction)

	r.Get("/goals", budget.ListGoals)
	r.Post("/goals", budget.CreateGoal)
	r.Get("/goals/{id}", budget.GetGoal)
	r.Put("/goals/{id}", budget.UpdateGoal)
	r.Delete("/goals/{id}", budget.DeleteGoal)
	r.Post("/goals/{id}/contribute", budget.Contribute)

	r.Get("/budgets", budget.ListBudgets)
	r.Post("/budgets", budget.CreateBudget)
	r.Delete("/budgets/{id}", budget.DeleteBudget)
	r.Get("/alerts", budget.ListAlerts)
	r.Post("/alerts/{id}/read", budget.MarkAlertRead)

	r.Get("/dashboard", budget.Dashboard)
	r.Get("/reports/monthly", budget.MonthlyReport)
	r.Post("/reports/export", budget.ExportReport)

	env.router = r
	return env
}

// user создает активного пользователя с заданной ролью
func (e *testEnv) user(t *testing.T, email string, role models.Role) *authctx.Identity {
	t.Helper()

	hash, err := crypto.NewHasher(bcrypt.MinCost).Hash(testPassword)
	require.NoError(t, err)

	u := &models.User{Email: email, PasswordHash: hash, Role: role, IsActive: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, e.store.CreateUser(context.Background(), u))

	return &authctx.Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      role,
		Token:     "raw-token-" + email,
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
}

// do выполняет запрос через роутер; body сериализуется в JSON, если это не строка
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, id *authctx.Identity) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if id != nil {
		req = req.WithContext(authctx.WithIdentity(req.Context(), id))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) api.ErrorResponse {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	resp := decode[api.ErrorResponse](t, w)
	require.Equal(t, code, resp.Error)
	return resp
}
