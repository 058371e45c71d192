package database

import (
	"context"
	"fmt"

	"taskly/configs"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis returns nil, nil when no Redis host is configured; callers fall back to
// in-process storage.
func ConnectRedis(ctx context.Context, cfg configs.Config) (*redis.Client, error) {
	if cfg.RedisHost == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	return client, nil
}
