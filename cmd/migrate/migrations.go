package main

import (
	"gorm.io/gorm"

	"github.com/backloghub/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		&models.User{},

		&models.Backlog{},
		&models.Project{},
		&models.Vote{},

		&models.AuditLog{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	models := registerModels()

	if err := db.AutoMigrate(models...); err != nil {
		return err
	}

	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		enableUUIDExtension,
		addProjectIndexes,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// enableUUIDExtension ensures UUID generation is available
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

// addProjectIndexes adds custom indexes for performance
func addProjectIndexes(db *gorm.DB) error {
	// Listing queries filter on uploader + status.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_projects_uploader_status
		ON projects(uploaded_by, status)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	// Vote counting subqueries hit (project_id, user_id).
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_votes_project_user
		ON votes(project_id, user_id)
		WHERE deleted_at IS NULL
	`).Error
}
