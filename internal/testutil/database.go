package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/USSTM/facility-portal/internal/accounts"
	"github.com/USSTM/facility-portal/internal/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDatabase wraps a real PostgreSQL database for testing
type TestDatabase struct {
	*database.Database
	container testcontainers.Container
	accounts  *accounts.Repository
}

// NewTestDatabase starts PostgreSQL and applies the embedded migrations.
func NewTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(30*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := database.Connect(ctx, connStr)
	require.NoError(t, err, "Failed to connect to database")
	require.NoError(t, db.Migrate(ctx), "Failed to run goose migrations")

	return &TestDatabase{
		Database:  db,
		container: postgresContainer,
		accounts:  accounts.NewRepository(db.Queries()),
	}
}

func (tdb *TestDatabase) Accounts() *accounts.Repository {
	return tdb.accounts
}

// Close closes the pool and terminates the container
func (tdb *TestDatabase) Close() {
	tdb.Database.Close()
	if tdb.container != nil {
		_ = tdb.container.Terminate(context.Background())
	}
}

// CleanupDatabase truncates all tables for test isolation
func (tdb *TestDatabase) CleanupDatabase(t *testing.T) {
	t.Helper()
	if _, err := tdb.Pool().Exec(context.Background(), "TRUNCATE TABLE accounts CASCADE"); err != nil {
		t.Logf("Failed to truncate accounts: %v", err)
	}
}
