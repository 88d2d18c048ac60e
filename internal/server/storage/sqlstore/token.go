package sqlstore

import (
	"context"
	"fmt"
	"time"
)

// RevokeToken adds raw token to the revocation registry.
// Повторный отзыв того же токена ничего не меняет.
func (s *Storage) RevokeToken(ctx context.Context, token string, expiryDate time.Time) error {
	query := `
		INSERT INTO revoked_tokens (token, expiry_date, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (token) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), token, expiryDate.UTC(), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsTokenRevoked reports whether raw token is in the registry
func (s *Storage) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM revoked_tokens WHERE token = ?`

	if err := s.db.GetContext(ctx, &count, s.db.Rebind(query), token); err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}

	return count > 0, nil
}

// DeleteExpiredRevokedTokens removes registry entries that expired before now
func (s *Storage) DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.execAffected(ctx, `DELETE FROM revoked_tokens WHERE expiry_date < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired revoked tokens: %w", err)
	}

	return n, nil
}
