// Package postgres manages the shared PostgreSQL connection used by the
// pgvector-backed chunk store.
package postgres

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db      *gorm.DB
	once    sync.Once
	initErr error
)

// GetDB initializes and returns the shared gorm database handle. The
// connection is established once per process.
func GetDB(databaseURL string) (*gorm.DB, error) {
	once.Do(func() {
		gdb, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to postgres: %w", err)
			return
		}
		db = gdb
	})
	return db, initErr
}

// HealthCheck pings the database through the underlying sql connection.
func HealthCheck(ctx context.Context) error {
	if db == nil {
		return fmt.Errorf("postgres connection not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the shared connection.
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
