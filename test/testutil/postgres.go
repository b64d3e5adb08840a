//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/narwhalmedia/catalogd/pkg/database"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

// NewPostgresDB starts postgres, connects through database.Open and applies
// the migrations. Tests are skipped when no container runtime is reachable.
func NewPostgresDB(t *testing.T) *PostgresDB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("catalogd_test"),
		tcpostgres.WithUsername("catalogd"),
		tcpostgres.WithPassword("catalogd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to resolve container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("Failed to resolve container port: %v", err)
	}

	cfg := database.DefaultConfig()
	cfg.Driver = database.DriverPostgres
	cfg.Host = host
	cfg.Port = port.Int()
	cfg.User = "catalogd"
	cfg.Password = "catalogd"
	cfg.Database = "catalogd_test"
	cfg.LogLevel = "silent"

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	})

	if _, err := database.RunMigrations(db, logger.NewNoop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &PostgresDB{DB: db}
}
