package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/budgetkeeper/internal/client/api"
	"github.com/iudanet/budgetkeeper/internal/client/auth"
	"github.com/iudanet/budgetkeeper/internal/client/iocli"
	"github.com/iudanet/budgetkeeper/internal/client/storage"
	"github.com/iudanet/budgetkeeper/internal/client/storage/boltdb"
	pkgapi "github.com/iudanet/budgetkeeper/pkg/api"
)

const testToken = "jwt-token"

type testCli struct {
	cli   *Cli
	out   *bytes.Buffer
	io    *iocli.IOMock
	store *boltdb.Storage
	mux   *http.ServeMux
}

// newTestIO возвращает IOMock, отвечающий на запросы ввода по очереди
func newTestIO(out *bytes.Buffer, inputs ...string) *iocli.IOMock {
	next := func(string) (string, error) {
		if len(inputs) == 0 {
			return "", io.EOF
		}
		v := inputs[0]
		inputs = inputs[1:]
		return v, nil
	}

	return &iocli.IOMock{
		PrintlnFunc: func(a ...any) { _, _ = fmt.Fprintln(out, a...) },
		PrintfFunc:  func(format string, a ...any) { _, _ = fmt.Fprintf(out, format, a...) },
		WriteFunc:   out.Write,
		ReadInputFunc: func(prompt string) (string, error) {
			return next(prompt)
		},
		ReadPasswordFunc: func(prompt string) (string, error) {
			return next(prompt)
		},
	}
}

func newTestCli(t *testing.T, inputs ...string) *testCli {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	out := &bytes.Buffer{}
	mockIO := newTestIO(out, inputs...)
	client := api.NewClient(server.URL)
	authService := auth.NewService(client, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &testCli{
		cli:   New(mockIO, authService, client),
		out:   out,
		io:    mockIO,
		store: store,
		mux:   mux,
	}
}

func (tc *testCli) loggedIn(t *testing.T) {
	t.Helper()

	require.NoError(t, tc.store.SaveSession(context.Background(), &storage.Session{
		Email:     "alice@example.com",
		Role:      "User",
		Token:     testToken,
		UserID:    1,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
}

func TestRun_UnknownCommand(t *testing.T) {
	tc := newTestCli(t)

	err := tc.cli.Run(context.Background(), "sync", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)

	for _, cmd := range commands {
		assert.Contains(t, buf.String(), cmd.name)
	}
}

func TestRegister(t *testing.T) {
	tc := newTestCli(t, "alice@example.com", "Str0ng!Pass", "Str0ng!Pass")

	tc.mux.HandleFunc("POST /api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req pkgapi.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)
		writeJSON(w, http.StatusCreated, pkgapi.RegisterResponse{ID: 1, Email: req.Email, Message: "Check your e-mail."})
	})

	require.NoError(t, tc.cli.Run(context.Background(), "register", nil))
	assert.Contains(t, tc.out.String(), "Registration successful")
	assert.Contains(t, tc.out.String(), "Check your e-mail.")
	assert.Len(t, tc.io.ReadPasswordCalls(), 2)
}

func TestRegister_Mismatch(t *testing.T) {
	tc := newTestCli(t, "alice@example.com", "Str0ng!Pass", "Other!Pass1")

	err := tc.cli.Run(context.Background(), "register", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")
}

func TestActivate(t *testing.T) {
	tc := newTestCli(t)
	tc.mux.HandleFunc("GET /api/v1/auth/activate", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "good" {
			writeJSON(w, http.StatusNotFound, pkgapi.ErrorResponse{Error: "not_found", Message: "Activation token not found."})
			return
		}
		writeJSON(w, http.StatusOK, pkgapi.MessageResponse{Message: "Account activated."})
	})

	require.NoError(t, tc.cli.Run(context.Background(), "activate", []string{"good"}))
	assert.Contains(t, tc.out.String(), "Account activated")

	err := tc.cli.Run(context.Background(), "activate", []string{"bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Activation token not found.")
}

func TestSessionLifecycle(t *testing.T) {
	tc := newTestCli(t, "Alice@Example.com", "Str0ng!Pass")
	ctx := context.Background()
	expires := time.Now().Add(time.Hour).UTC()

	tc.mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req pkgapi.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)
		writeJSON(w, http.StatusOK, pkgapi.LoginResponse{
			Token: testToken, TokenType: "Bearer", ExpiresAt: expires,
			User: pkgapi.User{ID: 1, Email: "alice@example.com", Role: "Pro", IsActive: true},
		})
	})
	tc.mux.HandleFunc("GET /api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		writeJSON(w, http.StatusOK, pkgapi.User{ID: 1, Email: "alice@example.com", Role: "Pro", IsActive: true})
	})
	revoked := false
	tc.mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		revoked = true
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, tc.cli.Run(ctx, "login", nil))
	assert.Contains(t, tc.out.String(), "Login successful")
	assert.Contains(t, tc.out.String(), "Role: Pro")

	tc.out.Reset()
	require.NoError(t, tc.cli.Run(ctx, "status", nil))
	assert.Contains(t, tc.out.String(), "Status: Authenticated")
	assert.Contains(t, tc.out.String(), "Email: alice@example.com")

	tc.out.Reset()
	require.NoError(t, tc.cli.Run(ctx, "whoami", nil))
	assert.Contains(t, tc.out.String(), "ID: 1")
	assert.Contains(t, tc.out.String(), "Active: true")

	tc.out.Reset()
	require.NoError(t, tc.cli.Run(ctx, "logout", nil))
	assert.True(t, revoked)

	tc.out.Reset()
	require.NoError(t, tc.cli.Run(ctx, "status", nil))
	assert.Contains(t, tc.out.String(), "Status: Not authenticated")

	err := tc.cli.Run(ctx, "logout", nil)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestStatus_Expired(t *testing.T) {
	tc := newTestCli(t)
	require.NoError(t, tc.store.SaveSession(context.Background(), &storage.Session{
		Email: "old@example.com", Token: "old", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	require.NoError(t, tc.cli.Run(context.Background(), "status", nil))
	assert.Contains(t, tc.out.String(), "Status: Session expired")
	assert.Contains(t, tc.out.String(), "old@example.com")
}

func TestTxAdd(t *testing.T) {
	tc := newTestCli(t)
	tc.loggedIn(t)

	tc.mux.HandleFunc("POST /api/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)

		var req pkgapi.TransactionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(1250), req.Amount)
		assert.Equal(t, "expense", req.Type)
		assert.Equal(t, "lunch", req.Description)
		require.NotNil(t, req.CategoryID)
		assert.Equal(t, int64(3), *req.CategoryID)
		require.NotNil(t, req.OccurredAt)

		writeJSON(w, http.StatusCreated, pkgapi.Transaction{
			ID: 9, Type: req.Type, Amount: req.Amount, Description: req.Description, OccurredAt: *req.OccurredAt,
		})
	})

	err := tc.cli.Run(context.Background(), "tx-add",
		[]string{"-amount", "12.50", "-desc", "lunch", "-category", "3", "-date", "2026-02-14"})
	require.NoError(t, err)
	assert.Contains(t, tc.out.String(), "Transaction #9 saved: expense 12.50 on 2026-02-14")
}

func TestTxAdd_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing amount", args: nil, wantErr: "-amount is required"},
		{name: "bad amount", args: []string{"-amount", "12,50"}, wantErr: "invalid amount"},
		{name: "bad type", args: []string{"-amount", "1", "-type", "transfer"}, wantErr: "unknown transaction type"},
		{name: "bad date", args: []string{"-amount", "1", "-date", "14.02.2026"}, wantErr: "expected YYYY-MM-DD"},
		{name: "unknown flag", args: []string{"-sum", "1"}, wantErr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestCli(t)
			tc.loggedIn(t)
			tc.mux.HandleFunc("/", func(http.ResponseWriter, *http.Request) {
				t.Error("server must not be called")
			})

			err := tc.cli.Run(context.Background(), "tx-add", tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTxAdd_NotAuthenticated(t *testing.T) {
	tc := newTestCli(t)

	err := tc.cli.Run(context.Background(), "tx-add", []string{"-amount", "1"})
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestTxList(t *testing.T) {
	tc := newTestCli(t)
	tc.loggedIn(t)

	category := int64(4)
	tc.mux.HandleFunc("GET /api/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, "2026-02-01T00:00:00Z", r.URL.Query().Get("from"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		writeJSON(w, http.StatusOK, pkgapi.TransactionList{
			Items: []pkgapi.Transaction{
				{ID: 1, Type: "income", Amount: 250000, Description: "salary", OccurredAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
				{ID: 2, Type: "expense", Amount: 1250, CategoryID: &category, Description: "lunch", OccurredAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
			},
			Total: 2,
			Limit: 10,
		})
	})

	require.NoError(t, tc.cli.Run(context.Background(), "tx-list", []string{"-from", "2026-02-01", "-limit", "10"}))

	out := tc.out.String()
	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "2500.00")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "Showing 1-2 of 2")
}

func TestTxList_Empty(t *testing.T) {
	tc := newTestCli(t)
	tc.loggedIn(t)
	tc.mux.HandleFunc("GET /api/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pkgapi.TransactionList{Items: []pkgapi.Transaction{}})
	})

	require.NoError(t, tc.cli.Run(context.Background(), "tx-list", nil))
	assert.Contains(t, tc.out.String(), "No transactions found.")
}

func TestRevokedTokenDropsSession(t *testing.T) {
	tc := newTestCli(t)
	tc.loggedIn(t)
	tc.mux.HandleFunc("GET /api/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, pkgapi.ErrorResponse{Error: "unauthorized", Message: "token revoked"})
	})

	err := tc.cli.Run(context.Background(), "tx-list", nil)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)

	_, err = tc.store.GetSession(context.Background())
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestDashboard(t *testing.T) {
	tc := newTestCli(t)
	tc.loggedIn(t)

	tc.mux.HandleFunc("GET /api/v1/dashboard", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("month"))
		assert.Empty(t, r.URL.Query().Get("year"))

		writeJSON(w, http.StatusOK, pkgapi.Dashboard{
			Year: 2026, Month: 3, Income: 300000, Expense: 120000, Balance: 180000,
			ByCategory: []pkgapi.CategoryAmount{{Name: "Food", Amount: 120000}},
			Budgets: []pkgapi.BudgetProgress{
				{Budget: pkgapi.Budget{LimitAmount: 100000}, Spent: 120000, Remaining: -20000},
			},
			Goals: []pkgapi.Goal{{Name: "Vacation", TargetAmount: 100000, CurrentAmount: 25000, Progress: 25}},
		})
	})

	require.NoError(t, tc.cli.Run(context.Background(), "dashboard", []string{"-month", "3"}))

	out := tc.out.String()
	assert.Contains(t, out, "=== 2026-03 ===")
	assert.Contains(t, out, "Balance: 1800.00")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "1200.00 of 1000.00 spent, -200.00 left")
	assert.Contains(t, out, "Vacation: 250.00 / 1000.00 (25%)")
}

func TestReport(t *testing.T) {
	t.Run("pro", func(t *testing.T) {
		tc := newTestCli(t)
		tc.loggedIn(t)
		tc.mux.HandleFunc("GET /api/v1/reports/monthly", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2", r.URL.Query().Get("months"))
			writeJSON(w, http.StatusOK, pkgapi.MonthlyReport{Months: []pkgapi.MonthTotal{
				{Month: "2026-02", Income: 1000, Expense: 500, Balance: 500},
				{Month: "2026-03"},
			}})
		})

		require.NoError(t, tc.cli.Run(context.Background(), "report", []string{"-months", "2"}))
		assert.Contains(t, tc.out.String(), "2026-02")
		assert.Contains(t, tc.out.String(), "2026-03")
	})

	t.Run("forbidden", func(t *testing.T) {
		tc := newTestCli(t)
		tc.loggedIn(t)
		tc.mux.HandleFunc("GET /api/v1/reports/monthly", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, pkgapi.ErrorResponse{Error: "forbidden", Message: "insufficient role"})
		})

		err := tc.cli.Run(context.Background(), "report", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient role")

		// 403 не сбрасывает сессию
		_, err = tc.store.GetSession(context.Background())
		assert.NoError(t, err)
	})
}

func TestCategories(t *testing.T) {
	tc := newTestCli(t)
	tc.loggedIn(t)
	owner := int64(1)
	tc.mux.HandleFunc("GET /api/v1/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []pkgapi.Category{
			{ID: 1, Name: "Food", Kind: "expense", System: true},
			{ID: 7, Name: "Hobby", Kind: "expense", UserID: &owner},
		})
	})

	require.NoError(t, tc.cli.Run(context.Background(), "categories", nil))
	assert.Contains(t, tc.out.String(), "system")
	assert.Contains(t, tc.out.String(), "personal")
}
