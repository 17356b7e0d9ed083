package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"social-insights-service/internal/infra/postgres/migrations"
)

// testDB is a migrated database in a throwaway container.
type testDB struct {
	db  *gorm.DB
	dsn string
}

// setupTestDB starts PostgreSQL in a container and runs the service migrations.
//
// Prerequisites:
//   - Docker must be running
//
// OR
//   - Skip tests with: go test -short
func setupTestDB(t *testing.T) (*testDB, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container (is Docker running? use -short to skip): %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, migrations.Run(db, migrations.DefaultChannel), "Failed to run migrations")

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return &testDB{db: db, dsn: connStr}, cleanup
}
