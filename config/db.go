package config

import (
	"fmt"

	"github.com/selamgames/bingo-engine/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SetupDatabase connects to Postgres and migrates the engine tables.
func SetupDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.GamePlayer{},
		&models.Transaction{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
