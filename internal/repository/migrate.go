package repository

import (
	"fmt"

	"github.com/fadilmartias/interview-coach/internal/model"
	"gorm.io/gorm"
)

// Migrate enables pgvector and creates the cache tables.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	if err := db.AutoMigrate(&model.BehavioralQuestion{}, &model.QueryCache{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
