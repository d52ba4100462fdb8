package database

import (
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema. The enrollment pair index is checked
// afterwards because enroll correctness depends on it.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
	); err != nil {
		return err
	}

	if !db.Migrator().HasIndex(&models.Enrollment{}, "idx_enrollment_pair") {
		if err := db.Migrator().CreateIndex(&models.Enrollment{}, "idx_enrollment_pair"); err != nil {
			utils.ErrorLogger.Printf("Error creating enrollment pair index: %v", err)
			return err
		}
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
