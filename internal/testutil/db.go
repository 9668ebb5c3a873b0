package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"inventory-api/internal"

	_ "github.com/go-sql-driver/mysql"
)

// NewTestDB opens a connection pool against the test database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/inventory_test?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return db
}

// ResetSchema drops and recreates the items table for a clean test state.
func ResetSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS items"); err != nil {
		t.Fatalf("Failed to drop items table: %v", err)
	}
	if err := internal.InitSchema(ctx, db); err != nil {
		t.Fatalf("Failed to recreate schema: %v", err)
	}
}

// CountItems returns the current number of rows in the items table.
func CountItems(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		t.Fatalf("Failed to count items: %v", err)
	}
	return n
}

// RequireIntegration skips the test unless INTEGRATION=1
func RequireIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION") != "1" {
		t.Skip("Skipping integration test. Set INTEGRATION=1 to run.")
	}
}
