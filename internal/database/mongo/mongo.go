// Package mongo manages the shared MongoDB connection used by the query
// log.
package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/razmarrus/cv-rag/internal/config"
)

var (
	client  *mongo.Client
	once    sync.Once
	initErr error
)

// GetClient initializes and returns the shared MongoDB client. The
// connection is established once per process and verified with a ping.
func GetClient(cfg *config.MongoConfig) (*mongo.Client, error) {
	once.Do(func() {
		clientOptions := options.Client().ApplyURI(cfg.Address)
		if cfg.Username != "" && cfg.Password != "" {
			clientOptions.SetAuth(options.Credential{
				Username: cfg.Username,
				Password: cfg.Password,
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			initErr = fmt.Errorf("failed to connect to mongodb: %w", err)
			return
		}
		if err = c.Ping(ctx, nil); err != nil {
			initErr = fmt.Errorf("failed to ping mongodb: %w", err)
			return
		}
		client = c
	})
	return client, initErr
}

// HealthCheck pings the MongoDB server.
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("mongodb client not initialized")
	}
	return client.Ping(ctx, nil)
}

// Close disconnects the shared client.
func Close(ctx context.Context) error {
	if client != nil {
		return client.Disconnect(ctx)
	}
	return nil
}
