package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/models"
)

func Connect(dbURL string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dbURL), &gorm.Config{})
}

// Migrate applies the schema for every model the service owns.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.UserEducation{},
		&models.UserExperience{},
		&models.UserSkill{},
		&models.Institute{},
		&models.InstituteCredits{},
		&models.CreditsHistory{},
		&models.Job{},
		&models.Application{},
		&models.Resume{},
		&models.Notification{},
		&models.Conversation{},
		&models.Message{},
		&models.JobView{},
		&models.InstituteView{},
		&models.SavedJob{},
		&models.UserVerification{},
		&models.InstituteVerification{},
	)
}
