// Package testutil holds helpers shared by integration and end-to-end tests.
package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/migrations"
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

// ResetSchema drops every table and recreates them from the embedded migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	downs, err := migrationFiles(".down.sql")
	if err != nil {
		return err
	}
	// Roll back newest first.
	for i := len(downs) - 1; i >= 0; i-- {
		if err := execFile(ctx, pool, downs[i]); err != nil {
			return err
		}
	}

	ups, err := migrationFiles(".up.sql")
	if err != nil {
		return err
	}
	for _, name := range ups {
		if err := execFile(ctx, pool, name); err != nil {
			return err
		}
	}

	return nil
}

func migrationFiles(suffix string) ([]string, error) {
	names, err := fs.Glob(migrations.FS(), "*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func execFile(ctx context.Context, pool *pgxpool.Pool, name string) error {
	sql, err := fs.ReadFile(migrations.FS(), name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
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

// UniqueID generates a unique 26-character ID for tests.
func UniqueID(prefix string) string {
	id := fmt.Sprintf("%s%d%d", strings.ToUpper(prefix), time.Now().UnixNano(), seq.Add(1))
	if len(id) > 26 {
		id = id[len(id)-26:]
	}
	return id
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@example.com", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestUser creates a user with sensible defaults. The password hash is a placeholder.
func NewTestUser(t testing.TB, role string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           UniqueID("U"),
		Email:        UniqueEmail(role),
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		FirstName:    "Test",
		LastName:     strings.ToUpper(role[:1]) + role[1:],
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestProperty creates a vacant property owned by landlordID.
func NewTestProperty(t testing.TB, landlordID string) *model.Property {
	t.Helper()
	now := time.Now().UTC()
	return &model.Property{
		ID:           UniqueID("P"),
		LandlordID:   landlordID,
		Name:         "Maple Court 4B",
		AddressLine1: "12 Maple Court",
		City:         "Springfield",
		State:        "IL",
		PostalCode:   "62701",
		PropertyType: model.PropertyTypeApartment,
		Bedrooms:     2,
		Bathrooms:    1.5,
		SquareFeet:   850,
		RentCents:    150000,
		Status:       model.PropertyStatusVacant,
		Amenities:    []string{"parking", "laundry"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestTenant creates a tenant record kept by landlordID.
func NewTestTenant(t testing.TB, landlordID string) *model.Tenant {
	t.Helper()
	now := time.Now().UTC()
	return &model.Tenant{
		ID:         UniqueID("T"),
		LandlordID: landlordID,
		FirstName:  "Riley",
		LastName:   "Renter",
		Email:      UniqueEmail("tenant"),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewTestLease creates a one-year lease starting today.
func NewTestLease(t testing.TB, property *model.Property, tenant *model.Tenant, status model.LeaseStatus) *model.Lease {
	t.Helper()
	now := time.Now().UTC()
	start := model.Today()
	return &model.Lease{
		ID:            UniqueID("L"),
		LandlordID:    property.LandlordID,
		PropertyID:    property.ID,
		TenantID:      tenant.ID,
		Status:        status,
		StartDate:     start,
		EndDate:       start.AddMonths(12).AddDays(-1),
		RentCents:     property.RentCents,
		DepositCents:  property.RentCents,
		PaymentDueDay: 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
