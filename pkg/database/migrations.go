package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/narwhalmedia/catalogd/internal/catalog/repository"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// Migration is one applied schema version.
type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (Migration) TableName() string { return "schema_migrations" }

// MigrationFunc performs one migration inside a transaction.
type MigrationFunc func(*gorm.DB) error

// MigrationEntry represents a single migration
type MigrationEntry struct {
	Version string
	Name    string
	Up      MigrationFunc
}

// Migrator applies versioned migrations in order.
type Migrator struct {
	db         *gorm.DB
	logger     interfaces.Logger
	migrations []MigrationEntry
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *gorm.DB, logger interfaces.Logger) *Migrator {
	return &Migrator{
		db:         db,
		logger:     logger,
		migrations: getAllMigrations(),
	}
}

// Migrate runs all pending migrations and returns how many were applied.
func (m *Migrator) Migrate() (int, error) {
	if err := m.db.AutoMigrate(&Migration{}); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		return 0, err
	}

	for i, migration := range pending {
		m.logger.Info("Running migration",
			interfaces.String("version", migration.Version),
			interfaces.String("name", migration.Name))

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&Migration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return i, fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}
	}

	return len(pending), nil
}

// GetPendingMigrations returns a list of pending migrations
func (m *Migrator) GetPendingMigrations() ([]MigrationEntry, error) {
	var appliedMigrations []Migration
	if err := m.db.Find(&appliedMigrations).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	applied := make(map[string]bool, len(appliedMigrations))
	for _, migration := range appliedMigrations {
		applied[migration.Version] = true
	}

	var pending []MigrationEntry
	for _, migration := range m.migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// RunMigrations runs all pending database migrations
func RunMigrations(db *gorm.DB, logger interfaces.Logger) (int, error) {
	return NewMigrator(db, logger).Migrate()
}

func getAllMigrations() []MigrationEntry {
	return []MigrationEntry{
		{
			Version: "20260301_001",
			Name:    "Create catalog schema",
			Up:      migration001CreateCatalogSchema,
		},
		{
			Version: "20260301_002",
			Name:    "Add pending batch index",
			Up:      migration002AddPendingBatchIndex,
		},
	}
}

func migration001CreateCatalogSchema(tx *gorm.DB) error {
	if err := tx.AutoMigrate(repository.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate catalog models: %w", err)
	}
	return nil
}

// The orchestrator reads pending rows of one batch newest first.
func migration002AddPendingBatchIndex(tx *gorm.DB) error {
	stmt := "CREATE INDEX IF NOT EXISTS idx_shadow_pending_batch " +
		"ON shadow_content_sources(scan_batch_id, id) WHERE enrichment_status = 'pending'"
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}
