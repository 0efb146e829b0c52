// Package milvus manages the shared Milvus connection used by the
// milvus-backed chunk store.
package milvus

import (
	"context"
	"fmt"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
)

var (
	instance client.Client
	once     sync.Once
	initErr  error
)

// GetClient initializes and returns the shared Milvus client. The connection
// is established once per process.
func GetClient(ctx context.Context, address string) (client.Client, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: address})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to milvus: %w", err)
			return
		}
		instance = c
	})
	return instance, initErr
}

// HealthCheck verifies the connection by listing collections.
func HealthCheck(ctx context.Context) error {
	if instance == nil {
		return fmt.Errorf("milvus client not initialized")
	}
	if _, err := instance.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}

// Close closes the shared connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}
