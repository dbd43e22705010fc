// internal/infrastructure/database/redis/token_store.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked_token:"

// TokenStore keeps revoked JWT ids until the token would have expired anyway
type TokenStore struct {
	rdb redis.Cmdable
}

// NewTokenStore creates a revocation list on top of a Redis client
func NewTokenStore(rdb redis.Cmdable) *TokenStore {
	return &TokenStore{rdb: rdb}
}

// Revoke marks the token id as revoked for ttl. A non-positive ttl is a no-op.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id was revoked
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}
