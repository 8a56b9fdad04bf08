package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Whateverdoa/vertical-slice-service/internals/storage/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisUserCache is a read-through TTL cache of user records keyed by user ID.
type RedisUserCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func userCacheKey(userID uuid.UUID) string {
	return "users:cache:" + userID.String()
}

func (c *RedisUserCache) GetUser(ctx context.Context, userID uuid.UUID) (models.User, bool, error) {
	raw, err := c.Client.Get(ctx, userCacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.User{}, false, nil
		}
		slog.Error("Redis get user error", "err", err, "userID", userID)
		return models.User{}, false, fmt.Errorf("failed to get cached user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		// Stale or corrupt entry, drop it and treat as a miss
		c.Client.Del(ctx, userCacheKey(userID))
		return models.User{}, false, nil
	}

	return user, true, nil
}

func (c *RedisUserCache) SetUser(ctx context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user for cache: %w", err)
	}

	if err := c.Client.Set(ctx, userCacheKey(user.ID), raw, c.TTL).Err(); err != nil {
		slog.Error("Redis set user error", "err", err, "userID", user.ID)
		return fmt.Errorf("failed to cache user: %w", err)
	}

	return nil
}

func (c *RedisUserCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	if err := c.Client.Del(ctx, userCacheKey(userID)).Err(); err != nil {
		slog.Error("Redis invalidate user error", "err", err, "userID", userID)
		return fmt.Errorf("failed to invalidate cached user: %w", err)
	}
	return nil
}
