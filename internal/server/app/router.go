package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/handlers"
	"github.com/iudanet/budgetkeeper/internal/server/middleware"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

// routerDeps зависимости HTTP слоя
type routerDeps struct {
	logger    *slog.Logger
	validator middleware.TokenValidator
	revoked   middleware.RevocationChecker
	limiter   *middleware.RateLimiter
	auth      *handlers.AuthHandler
	admin     *handlers.AdminHandler
	budget    *handlers.BudgetHandler
	health    *handlers.HealthHandler
}

// newRouter собирает маршруты /api/v1.
// Группы маршрутов соответствуют наборам ролей.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(d.logger, "/api/v1/health"))
	r.Use(middleware.Recovery(d.logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public: без проверки Bearer токена, устаревший заголовок не мешает входу
		r.Get("/health", d.health.Health)
		r.Get("/categories/system", d.budget.ListSystemCategories)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(d.limiter.Middleware)
				r.Post("/register", d.auth.Register)
				r.Post("/login", d.auth.Login)
			})
			r.Get("/activate", d.auth.Activate)

			r.With(
				middleware.Authenticate(d.logger, d.validator, d.revoked),
				middleware.RequireAuth(d.logger),
			).Post("/logout", d.auth.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(d.logger, d.validator, d.revoked))
			protectedRoutes(r, d)
		})
	})

	return r
}

// protectedRoutes маршруты за Access Decision Point
func protectedRoutes(r chi.Router, d routerDeps) {
	// Любой аутентифицированный пользователь
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.logger))

		r.Get("/me", d.auth.Me)

		r.Get("/categories", d.budget.ListCategories)
		r.Post("/categories", d.budget.CreateCategory)
		r.Delete("/categories/{id}", d.budget.DeleteCategory)

		r.Get("/transactions", d.budget.ListTransactions)
		r.Post("/transactions", d.budget.CreateTransaction)
		r.Get("/transactions/{id}", d.budget.GetTransaction)
		r.Put("/transactions/{id}", d.budget.UpdateTransaction)
		r.Delete("/transactions/{id}", d.budget.DeleteTransaction)

		r.Get("/goals", d.budget.ListGoals)
		r.Post("/goals", d.budget.CreateGoal)
		r.Get("/goals/{id}", d.budget.GetGoal)
		r.Put("/goals/{id}", d.budget.UpdateGoal)
		r.Delete("/goals/{id}", d.budget.DeleteGoal)
		r.Post("/goals/{id}/contribute", d.budget.Contribute)

		r.Get("/budgets", d.budget.ListBudgets)
		r.Post("/budgets", d.budget.CreateBudget)
		r.Delete("/budgets/{id}", d.budget.DeleteBudget)

		r.Get("/alerts", d.budget.ListAlerts)
		r.Post("/alerts/{id}/read", d.budget.MarkAlertRead)

		r.Get("/dashboard", d.budget.Dashboard)
	})

	// Pro и Admin
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRoles(d.logger, models.RolePro, models.RoleAdmin))

		r.Get("/reports/monthly", d.budget.MonthlyReport)
		r.Post("/reports/export", d.budget.ExportReport)
	})

	// Admin
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRoles(d.logger, models.RoleAdmin))

		r.Get("/users", d.admin.ListUsers)
		r.Patch("/users/{id}", d.admin.UpdateUser)
		r.Delete("/users/{id}", d.admin.DeleteUser)
		r.Post("/categories", d.admin.CreateSystemCategory)
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, api.ErrorResponse{Error: code, Message: message})
}
