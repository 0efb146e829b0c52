// Package redis manages the shared Redis connection used by the answer
// cache.
package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/razmarrus/cv-rag/internal/config"
)

var (
	client  *redis.Client
	once    sync.Once
	initErr error
)

// GetClient initializes and returns the shared Redis client. The connection
// is established once per process and verified with a ping.
func GetClient(cfg *config.RedisConfig) (*redis.Client, error) {
	once.Do(func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			initErr = fmt.Errorf("failed to connect to redis: %w", err)
			return
		}
		client = rdb
	})
	return client, initErr
}

// HealthCheck pings the Redis server.
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return client.Ping(ctx).Err()
}

// Close closes the shared connection.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
