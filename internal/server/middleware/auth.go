package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/authctx"
	"github.com/iudanet/budgetkeeper/internal/server/token"
)

// TokenValidator проверяет подпись и срок bearer токена
type TokenValidator interface {
	Validate(raw string) (*token.Claims, error)
}

// RevocationChecker проверяет реестр отозванных токенов
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
}

// Authenticate разбирает заголовок Authorization.
// Без заголовка запрос проходит дальше неаутентифицированным; решение о доступе
// принимают RequireAuth и RequireRoles. Неверный или отозванный токен дает 401.
func Authenticate(logger *slog.Logger, validator TokenValidator, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				logger.WarnContext(ctx, "invalid Authorization header format")
				writeError(w, "unauthorized", "invalid token", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimSpace(parts[1])

			claims, err := validator.Validate(raw)
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				writeError(w, "unauthorized", "invalid token", http.StatusUnauthorized)
				return
			}

			userID, err := claims.ID()
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				writeError(w, "unauthorized", "invalid token", http.StatusUnauthorized)
				return
			}

			isRevoked, err := revoked.IsTokenRevoked(ctx, raw)
			if err != nil {
				logger.ErrorContext(ctx, "failed to check token revocation", slog.Any("error", err))
				writeError(w, "internal", "internal server error", http.StatusInternalServerError)
				return
			}
			if isRevoked {
				logger.WarnContext(ctx, "revoked token presented", slog.Int64("user_id", userID))
				writeError(w, "unauthorized", "token revoked", http.StatusUnauthorized)
				return
			}

			id := &authctx.Identity{
				UserID: userID,
				Email:  claims.Subject,
				Role:   claims.Role,
				Token:  raw,
			}
			if claims.ExpiresAt != nil {
				id.ExpiresAt = claims.ExpiresAt.Time
			}

			logger.DebugContext(ctx, "user authenticated",
				slog.Int64("user_id", userID),
				slog.String("role", claims.Role.String()))

			next.ServeHTTP(w, r.WithContext(authctx.WithIdentity(ctx, id)))
		})
	}
}

// RequireAuth пропускает только аутентифицированные запросы
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := authctx.FromContext(r.Context()); !ok {
				logger.WarnContext(r.Context(), "authentication required", slog.String("path", r.URL.Path))
				writeError(w, "unauthorized", "authentication required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles пропускает вызывающих с одной из ролей roles.
// Роль берется из токена, поэтому изменение роли действует со следующего входа.
func RequireRoles(logger *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := authctx.FromContext(r.Context())
			if !ok {
				writeError(w, "unauthorized", "authentication required", http.StatusUnauthorized)
				return
			}

			if _, ok := allowed[id.Role]; !ok {
				logger.WarnContext(r.Context(), "access denied",
					slog.Int64("user_id", id.UserID),
					slog.String("role", id.Role.String()),
					slog.String("path", r.URL.Path))
				writeError(w, "forbidden", "insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
