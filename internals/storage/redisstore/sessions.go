package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore tracks revoked access tokens. Logged-out tokens are
// denylisted by token ID until they expire on their own; deactivated users
// get a revocation watermark that fails every token issued before it.
type RedisSessionStore struct {
	Client *redis.Client
}

func denylistKey(tokenID string) string {
	return "auth:denylist:" + tokenID
}

func revokedKey(userID uuid.UUID) string {
	return "auth:revoked:" + userID.String()
}

func (s *RedisSessionStore) DenylistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	slog.Debug("Denylisting token", "tokenID", tokenID)

	if ttl <= 0 {
		// Token already expired, nothing to track
		return nil
	}

	if err := s.Client.Set(ctx, denylistKey(tokenID), "1", ttl).Err(); err != nil {
		slog.Error("Redis denylist token error", "err", err)
		return fmt.Errorf("failed to denylist token: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) IsTokenDenylisted(ctx context.Context, tokenID string) (bool, error) {
	err := s.Client.Get(ctx, denylistKey(tokenID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		slog.Error("Redis denylist lookup error", "err", err)
		return false, fmt.Errorf("failed to check token denylist: %w", err)
	}
	return true, nil
}

func (s *RedisSessionStore) RevokeUserSessions(ctx context.Context, userID uuid.UUID, revokedAt time.Time, ttl time.Duration) error {
	slog.Debug("Revoking user sessions", "userID", userID)

	if err := s.Client.Set(ctx, revokedKey(userID), revokedAt.UTC().Format(time.RFC3339Nano), ttl).Err(); err != nil {
		slog.Error("Redis revoke sessions error", "err", err, "userID", userID)
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) UserRevokedAfter(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	raw, err := s.Client.Get(ctx, revokedKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		slog.Error("Redis revocation lookup error", "err", err, "userID", userID)
		return time.Time{}, false, fmt.Errorf("failed to check user revocation: %w", err)
	}

	revokedAt, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return revokedAt, true, nil
}
