package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalogd/pkg/database"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

// NewSQLiteDB opens a private in-memory sqlite database with the catalog
// schema applied. It is closed when the test ends.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.Driver = database.DriverSQLite
	cfg.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg.LogLevel = "silent"

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open sqlite database: %v", err)
	}

	if _, err := database.RunMigrations(db, logger.NewNoop()); err != nil {
		t.Fatalf("Failed to migrate sqlite database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}
