package database

import (
	"log"

	"rentalportal/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate runs auto-migration for every core model. Shared with the sqlite test
// harness so tests and production schemas stay aligned.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Client{},
		&model.ClientAddress{},
		&model.Asset{},
		&model.AssetMovement{},
		&model.PricingTier{},
		&model.Entity{},
		&model.LineItem{},
		&model.StatusHistory{},
		&model.QuoteState{},
		&model.Invoice{},
		&model.AuditLog{},
	)
}
