package redisstore

import (
	"context"
	"log/slog"
	"os"

	"github.com/Whateverdoa/vertical-slice-service/pkg/config"
	"github.com/redis/go-redis/v9"
)

func CreateRedisClient(ctx context.Context) *redis.Client {
	slog.Debug("Creating Redis client")
	opts, err := redis.ParseURL(config.GetRedisURL())
	if err != nil {
		slog.Error("Redis URL parse error", "err", err)
		os.Exit(1)
	}

	client := redis.NewClient(opts)

	slog.Debug("Try to ping Redis")
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Redis ping error", "err", err)
		os.Exit(1)
	}
	slog.Debug("Ping is successful")

	return client
}
