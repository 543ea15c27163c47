package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	timeprovider "github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/time"
)

// TestDBManager provides utilities for testing against a real Postgres
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager connects to the database named by PLUTUS_TEST_DB_HOST and
// friends, migrates it and empties the blob tables. The test is skipped when no
// database is configured.
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	host, ok := os.LookupEnv("PLUTUS_TEST_DB_HOST")
	if !ok {
		t.Skip("PLUTUS_TEST_DB_HOST not set, skipping database test")
	}

	timeProvider := timeprovider.NewRealTimeProvider()
	config := DefaultConfig()
	config.Host = host
	config.Port = getEnvIntOrDefault("PLUTUS_TEST_DB_PORT", 5432)
	config.Username = getEnvOrDefault("PLUTUS_TEST_DB_USERNAME", "postgres")
	config.Password = getEnvOrDefault("PLUTUS_TEST_DB_PASSWORD", "postgres")
	config.Database = getEnvOrDefault("PLUTUS_TEST_DB_NAME", "plutus_test")
	config.LogLevel = "silent"
	config.RetryAttempts = 1
	config.QueryTimeout = 5 * time.Second

	manager := NewManager(config, logger, timeProvider)
	if _, err := manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})

	if err := manager.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	m := &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
	m.TruncateBlobTables(t)
	return m
}

// TruncateBlobTables empties the blob and lease tables
func (m *TestDBManager) TruncateBlobTables(t *testing.T) {
	t.Helper()

	if err := m.Manager.DB().Exec("TRUNCATE TABLE csv_blobs, blob_leases").Error; err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
