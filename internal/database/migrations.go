package database

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ResearchGroup{},
		&models.Researcher{},
		&models.Project{},
		&models.Grant{},
		&models.CreatorGrantTask{},
		&models.StudyArea{},
		&models.Campaign{},
		&models.Site{},
		&models.Transect{},
		&models.Reference{},
		&models.Location{},
		&models.Layer{},
		&models.SampleType{},
		&models.Sample{},
		&models.GrainSizeMeasurement{},
	)
}

// DefaultAdminUsername is the bootstrap superuser created on an empty
// database.
const DefaultAdminUsername = "admin"

// SeedData bootstraps an empty database with an initial superuser so
// the instance is administrable. Existing installations are untouched.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	admin := models.User{
		Username:    DefaultAdminUsername,
		Email:       "admin@localhost",
		Password:    string(hash),
		IsSuperuser: true,
		IsActive:    true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create bootstrap superuser: %w", err)
	}

	return seedSampleTypes(db)
}

func seedSampleTypes(db *gorm.DB) error {
	types := []models.SampleType{
		{Word: "sediment core", Label: "SC"},
		{Word: "surface sample", Label: "SS"},
		{Word: "bulk sample", Label: "BS"},
	}

	for _, st := range types {
		st := st
		if err := db.Where(models.SampleType{Word: st.Word}).Attrs(st).FirstOrCreate(&models.SampleType{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// Healthy verifies the underlying connection responds.
func Healthy(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
