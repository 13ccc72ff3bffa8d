// Package testutil provides database test helpers.
package testutil

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ltm/adventcal/internal/migrate"
)

// TestingTB is the subset of *testing.T the helpers need.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

// TestDBConfig holds configuration for the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig reads the test database location from TEST_DB_* env
// vars, defaulting to a local instance.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "55432"),
		User:     getEnvOrDefault("TEST_DB_USER", "adventcal"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "adventcal"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "adventcal"),
	}
}

func (c TestDBConfig) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password, net.JoinHostPort(c.Host, c.Port), c.DBName)
}

// SetupTestDB connects to the test database, applies the production
// migrations, and clears all data. The test is skipped when no database is
// reachable, unless TEST_REQUIRE_DB is set.
func SetupTestDB(t TestingTB) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, DefaultTestDBConfig().dsn())
	if err == nil {
		err = pool.Ping(ctx)
	}
	if err != nil {
		if envBool("TEST_REQUIRE_DB") {
			t.Fatal("Test database not available:", err)
		}
		t.Skip("Test database not available:", err)
		return nil
	}

	if merr := migrate.Run(ctx, pool); merr != nil {
		t.Fatal("Failed to run migrations:", merr)
	}

	CleanupTestDB(t, pool)
	return pool
}

// CleanupTestDB removes all data, in dependency order.
func CleanupTestDB(t TestingTB, pool *pgxpool.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, table := range []string{"opened_days", "sessions", "users"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("Failed to clean up table %s: %v", table, err)
		}
	}
}

// TeardownTestDB clears data and closes the pool.
func TeardownTestDB(t TestingTB, pool *pgxpool.Pool) {
	t.Helper()
	if pool != nil {
		CleanupTestDB(t, pool)
		pool.Close()
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
