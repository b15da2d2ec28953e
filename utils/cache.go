package utils

import (
	"context"
	"fmt"
	"time"

	"flybot/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects to the configured Redis server on the given DB
// and checks the connection.
func NewRedisClient(ctx context.Context, db int) (*redis.Client, error) {
	cfg := config.Get()
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (db %d): %w", db, err)
	}
	return client, nil
}
