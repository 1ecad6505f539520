// Package datamodeltest opens throwaway SQLite databases carrying the full
// schema, for repository and service tests.
package datamodeltest

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/dayflow/internal/core/datamodel"
	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
)

// Open returns a fresh in-memory database with every table migrated.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// each connection to :memory: is its own database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(datamodel.Models()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// InsertUser stores u with defaults for the columns tests rarely care about.
func InsertUser(ctx context.Context, db *gorm.DB, u *userDatamodel.User) error {
	if u.Status == "" {
		u.Status = "active"
	}
	if u.Role == "" {
		u.Role = "employee"
	}
	if u.PasswordHash == "" {
		u.PasswordHash = "x"
	}
	return db.WithContext(ctx).Create(u).Error
}
