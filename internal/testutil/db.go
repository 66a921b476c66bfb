// README: Helpers for DB-backed tests; skipped unless CARPOOL_TEST_DSN is set.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/infra"
)

// DB connects to CARPOOL_TEST_DSN, applies migrations and empties every table.
func DB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("CARPOOL_TEST_DSN")
	if dsn == "" {
		t.Skip("CARPOOL_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := infra.NewDB(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := infra.Migrate(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE request_events, requests, vehicles, users"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

// SeedUser inserts a user row directly.
func SeedUser(t *testing.T, db *pgxpool.Pool, email, name, role string, seatsNeeded int) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO users (email, name, role, seats_needed) VALUES ($1, $2, $3, $4)`,
		email, name, role, seatsNeeded,
	)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
}

// SeedVehicle inserts a vehicle row directly.
func SeedVehicle(t *testing.T, db *pgxpool.Pool, driver string, total, family int, status string) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO vehicles (driver_email, vehicle_type, total_seats, family_members, status)
		VALUES ($1, 'sedan', $2, $3, $4)`,
		driver, total, family, status,
	)
	if err != nil {
		t.Fatalf("seed vehicle %s: %v", driver, err)
	}
}
