package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/cookify-app/backend/internal/model"
)

// RunMigrations brings the schema up to date. The unique index on
// recipes.url comes from the model tags; it is what turns racing upserts of
// the same post into a conflict-then-update instead of duplicate rows.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		// The embedding column needs the pgvector extension.
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			log.Printf("Could not ensure pgvector extension: %v", err)
		}
	}
	return db.AutoMigrate(&model.Recipe{})
}
