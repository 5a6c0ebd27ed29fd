// Package database opens the relational store and migrates its schema.
package database

import (
	"fmt"
	"log/slog"

	"messageapp/internal/config"
	"messageapp/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured engine and migrates the schema.
// For sqlite, foreign keys are enforced only when the DSN asks for it
// (e.g. "chat.db?_foreign_keys=on").
func Open(cfg config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	slog.Debug("database ready", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates every table, including the membership join table.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Chat{}, "Users", &models.ChatMember{}); err != nil {
		return fmt.Errorf("failed to set up chat_members join table: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Chat{}, &models.ChatMember{}, &models.Message{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// InMemory returns a private, named in-memory sqlite database. Each call
// yields a fresh store that lives as long as one of its connections is open.
func InMemory() config.Database {
	return config.Database{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
}
