package testutil

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// catalogTables lists every catalog table, children first.
var catalogTables = []string{
	"source_links", "episodes", "seasons", "content_genres", "genres",
	"contents", "source_scan_logs", "shadow_content_sources", "sources",
}

// PostgresDB is a migrated catalog schema in a throwaway postgres container.
// NewPostgresDB, built with the integration tag, starts one.
type PostgresDB struct {
	DB *gorm.DB
}

// Reset empties every catalog table and restarts identity columns.
func (p *PostgresDB) Reset() error {
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(catalogTables, ", "))
	return p.DB.Exec(stmt).Error
}
