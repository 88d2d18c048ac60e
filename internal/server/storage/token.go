package storage

import (
	"context"
	"time"
)

// RevokedTokenStorage defines interface for the revoked bearer token registry
type RevokedTokenStorage interface {
	// RevokeToken adds raw token to the registry; repeated calls are no-ops
	RevokeToken(ctx context.Context, token string, expiryDate time.Time) error

	// IsTokenRevoked reports whether raw token is present in the registry
	IsTokenRevoked(ctx context.Context, token string) (bool, error)

	// DeleteExpiredRevokedTokens removes entries whose expiry date is before now
	// Returns number of deleted entries
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}
