package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/gema-writing-api/internal/models"
)

// Migrate creates or updates the writing schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.UserCredits{}, &models.WritingScore{}, &models.CombinedWritingScore{})
}
