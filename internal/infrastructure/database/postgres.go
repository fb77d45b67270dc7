package database

import (
	"context"
	"fmt"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/you/storeapi/internal/infrastructure/repositories"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a new postgres connection. Verbose SQL logging is only enabled
// outside production.
func Open(dsn string, production bool) (*gorm.DB, error) {
	level := logger.Info
	if production {
		level = logger.Warn
	}
	config := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}
	return gorm.Open(postgres.Open(dsn), config)
}

// AutoMigrate creates the users, otps and casbin_rule tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&repositories.DBUser{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	if err := db.AutoMigrate(&repositories.DBOtp{}); err != nil {
		return fmt.Errorf("failed to migrate otps table: %w", err)
	}

	// The adapter creates casbin_rule on construction
	if _, err := gormadapter.NewAdapterByDB(db); err != nil {
		return fmt.Errorf("failed to initialize Casbin GORM adapter: %w", err)
	}
	return nil
}

// DBPinger checks that the connection pool of DB can reach the database
type DBPinger struct{ DB *gorm.DB }

func (p DBPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
