// Package sqlstore is the relational credential store, backed by gorm.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config captures the settings for opening the database.
type Config struct {
	DSN string
	// MaxOpenConns caps the pool; sqlite serializes writers regardless.
	MaxOpenConns int
}

// Open connects to the database and syncs the users table schema.
func Open(ctx context.Context, cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.WithContext(ctx).AutoMigrate(&userRow{}); err != nil {
		return nil, fmt.Errorf("sqlite migrate users: %w", err)
	}
	return db, nil
}

// Ping checks the underlying connection. Used by the readiness probe.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
