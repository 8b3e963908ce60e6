// Package db owns database connectivity, schema migration and the idempotent
// role/user bootstrap.
package db

import (
	"fmt"
	"time"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/config"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the PostgreSQL connection, retrying a few times so the
// database has time to come up when both start together.
func Connect(dbCfg config.DatabaseConfig) (*gorm.DB, error) {
	var conn *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		conn, err = gorm.Open(postgres.Open(dbCfg.DSN()), &gorm.Config{})
		if err == nil {
			return conn, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("database connection failed: %w", err)
}

// Migrate applies GORM auto-migrations for all models. Order matters:
// referenced tables first so foreign keys resolve.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Lotissement{},
		&models.Bloc{},
		&models.Parcelle{},
		&models.Document{},
	); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}
