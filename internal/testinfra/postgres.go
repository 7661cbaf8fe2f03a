// Package testinfra starts the real backing services repository tests run
// against. A service is reused from the environment when its TEST_* variable
// is set, otherwise a container is started once per test binary. Tests are
// skipped when neither is possible.
package testinfra

import (
	migration "Foodgram-Backend/cmd/database/migrate"
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresPort  = "5432/tcp"
	startTimeout  = 2 * time.Minute
)

var (
	postgresOnce sync.Once
	postgresDSN  string
	postgresErr  error
)

// NewPostgres returns a handle on an empty, migrated schema of its own. The
// schema is dropped when the test ends.
func NewPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("database test skipped in short mode")
	}

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		postgresOnce.Do(func() {
			postgresDSN, postgresErr = startPostgres()
		})
		if postgresErr != nil {
			t.Skipf("postgres container not started: %v", postgresErr)
		}
		dsn = postgresDSN
	}

	admin, err := open(dsn)
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}
	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := admin.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		if err := admin.Exec("DROP SCHEMA " + schema + " CASCADE").Error; err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		closeDB(admin)
	})

	db, err := open(dsn + " search_path=" + schema)
	if err != nil {
		t.Fatalf("open schema %s: %v", schema, err)
	}
	t.Cleanup(func() { closeDB(db) })

	if err := migration.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// startPostgres leaves the container running for the rest of the binary;
// the testcontainers reaper removes it afterwards.
func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{postgresPort},
			Env: map[string]string{
				"POSTGRES_USER":     "foodgram",
				"POSTGRES_PASSWORD": "foodgram",
				"POSTGRES_DB":       "foodgram",
			},
			// the server restarts once after the init scripts
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort(postgresPort),
			).WithStartupTimeout(startTimeout),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("create postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("postgres host: %w", err)
	}
	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		return "", fmt.Errorf("postgres port: %w", err)
	}

	return fmt.Sprintf(
		"host=%s port=%s user=foodgram password=foodgram dbname=foodgram sslmode=disable TimeZone=UTC",
		host, port.Port(),
	), nil
}

// open mirrors the application connection: translated errors, no SQL logging.
func open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
