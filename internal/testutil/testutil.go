package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/canteenrush/canteenrush/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table by applying the down migrations newest first,
// then recreates them with the up migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}
	dir := filepath.Join(root, "migrations")

	downs, err := filepath.Glob(filepath.Join(dir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("list down migrations: %w", err)
	}
	slices.Sort(downs)
	slices.Reverse(downs)

	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("list up migrations: %w", err)
	}
	slices.Sort(ups)

	// golang-migrate bookkeeping is dropped too so RunMigrations starts clean.
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}

	for _, path := range append(downs, ups...) {
		if err := applySQLFile(ctx, pool, path); err != nil {
			return err
		}
	}

	return nil
}

func applySQLFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Int64

// NewTestUser creates a student with full karma.
// PINHash is a placeholder; hash a real PIN when login is under test.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		RollNo:    UniqueID("roll"),
		Name:      "Test Student",
		PINHash:   "not-a-real-hash",
		Points:    model.DefaultKarma,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestVendor creates a vendor with a unique username.
func NewTestVendor(t testing.TB) *model.Vendor {
	t.Helper()
	return &model.Vendor{
		Name:         "Test Stall",
		Username:     UniqueID("vendor"),
		PasswordHash: "not-a-real-hash",
		ImageURL:     "https://example.com/stall.png",
	}
}

// NewTestMenuItem creates an available item for the vendor.
func NewTestMenuItem(t testing.TB, vendorID int64, name string, prepMinutes int) *model.MenuItem {
	t.Helper()
	return &model.MenuItem{
		VendorID:    vendorID,
		Name:        name,
		Price:       100,
		PrepMinutes: prepMinutes,
		ImageURL:    "https://example.com/item.png",
		Available:   true,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}
