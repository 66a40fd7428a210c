package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
)

var (
	// Global test container (shared across all integration tests)
	globalContainer *PostgresContainer
	globalDB        *sqlx.DB
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	RawDB     *sqlx.DB
	DB        *database.DB
	Logger    *logger.Logger
}

// RequireIntegration skips the test unless integration testing is enabled.
// Integration tests need Docker for testcontainers; opt in with
// PHARMADIST_INTEGRATION_TESTS=1.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("PHARMADIST_INTEGRATION_TESTS") == "" {
		t.Skip("integration tests disabled; set PHARMADIST_INTEGRATION_TESTS=1 to run")
	}
}

// NewIntegrationSuite creates a new integration test suite backed by a shared
// PostgreSQL container with the warehouse schema applied.
//
// Usage:
//
//	func TestRepository_Integration(t *testing.T) {
//	    testutil.RequireIntegration(t)
//	    ctx := context.Background()
//	    suite, err := testutil.NewIntegrationSuite(ctx)
//	    require.NoError(t, err)
//	    // ... run tests against suite.DB
//	}
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	container, db, err := getOrCreateContainer(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New("test", "test")
	wrappedDB, err := database.NewWithDSN(container.DSN, log)
	if err != nil {
		return nil, err
	}

	if err := container.Migrate(ctx, db); err != nil {
		return nil, err
	}

	return &IntegrationSuite{
		Container: container,
		RawDB:     db,
		DB:        wrappedDB,
		Logger:    log,
	}, nil
}

// getOrCreateContainer returns the shared test container
func getOrCreateContainer(ctx context.Context) (*PostgresContainer, *sqlx.DB, error) {
	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
		if containerErr != nil {
			return
		}
		globalDB, containerErr = globalContainer.Connect(ctx)
	})

	return globalContainer, globalDB, containerErr
}

// Truncate empties the given tables between tests
func (s *IntegrationSuite) Truncate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := s.RawDB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}
