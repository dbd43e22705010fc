// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/furnishop/furniture-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	models := []interface{}{
		&user.Credential{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates indexes gorm tags cannot express
func (m *Migration) CreateIndexes() error {
	if m.db.Dialector.Name() != "postgres" {
		return nil
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_credentials_created_at ON credentials(created_at)",
	}

	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Printf("✅ Created %d indexes successfully", len(indexes))
	return nil
}
