package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rentdesk/rentdesk/internal/model"
)

// Common errors for tenant repository operations.
var (
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrTenantEmailExists = errors.New("tenant email already exists for landlord")
)

// TenantFilter defines filters for listing tenants.
type TenantFilter struct {
	LandlordID string
	UserID     string
}

const tenantColumns = `id, landlord_id, user_id, first_name, last_name, email, phone,
	emergency_contact_name, emergency_contact_phone, notes, created_at, updated_at, deleted_at`

// CreateTenant inserts a new tenant record.
func (r *Repository) CreateTenant(ctx context.Context, t *model.Tenant) error {
	query := `
		INSERT INTO tenants (id, landlord_id, user_id, first_name, last_name, email, phone,
			emergency_contact_name, emergency_contact_phone, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.LandlordID,
		t.UserID,
		t.FirstName,
		t.LastName,
		t.Email,
		t.Phone,
		t.EmergencyContactName,
		t.EmergencyContactPhone,
		t.Notes,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTenantEmailExists
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// GetTenant retrieves a live tenant by ID.
func (r *Repository) GetTenant(ctx context.Context, id string) (*model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1 AND deleted_at IS NULL`

	t, err := scanTenant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return t, nil
}

// ListTenants retrieves a paginated list of tenants, newest first.
func (r *Repository) ListTenants(ctx context.Context, filter TenantFilter, cursor string, limit int) ([]*model.Tenant, string, error) {
	cursorData, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	q := query{where: []string{"deleted_at IS NULL"}}
	if filter.LandlordID != "" {
		q.and("landlord_id = %s", filter.LandlordID)
	}
	if filter.UserID != "" {
		q.and("user_id = %s", filter.UserID)
	}
	if cursorData != nil {
		q.and("(created_at, id) < (%s, %s)", cursorData.CreatedAt, cursorData.ID)
	}

	sql := `SELECT ` + tenantColumns + ` FROM tenants` + q.whereSQL() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + q.arg(limit+1)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*model.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating tenants: %w", err)
	}

	tenants, next := page(tenants, limit, func(t *model.Tenant) *PaginationCursor {
		return &PaginationCursor{ID: t.ID, CreatedAt: t.CreatedAt}
	})
	return tenants, next, nil
}

// UpdateTenant updates a tenant's mutable fields.
func (r *Repository) UpdateTenant(ctx context.Context, t *model.Tenant) error {
	query := `
		UPDATE tenants
		SET first_name = $2, last_name = $3, email = $4, phone = $5, emergency_contact_name = $6,
			emergency_contact_phone = $7, notes = $8, user_id = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		t.ID,
		t.FirstName,
		t.LastName,
		t.Email,
		t.Phone,
		t.EmergencyContactName,
		t.EmergencyContactPhone,
		t.Notes,
		t.UserID,
		t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTenantEmailExists
		}
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTenantNotFound
	}

	return nil
}

// DeleteTenant performs a soft delete on a tenant.
func (r *Repository) DeleteTenant(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE tenants SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// LinkTenantsToUser attaches unlinked tenant records with a matching email to a user.
func (r *Repository) LinkTenantsToUser(ctx context.Context, email, userID string) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE tenants
		SET user_id = $2, updated_at = NOW()
		WHERE LOWER(email) = LOWER($1) AND user_id IS NULL AND deleted_at IS NULL
	`, email, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to link tenants: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListTenantIDsForUser returns the IDs of tenant records linked to a user.
func (r *Repository) ListTenantIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM tenants WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect tenant ids: %w", err)
	}
	return ids, nil
}

// CountTenants counts live tenants of a landlord, or all when landlordID is empty.
func (r *Repository) CountTenants(ctx context.Context, landlordID string) (int, error) {
	q := query{where: []string{"deleted_at IS NULL"}}
	if landlordID != "" {
		q.and("landlord_id = %s", landlordID)
	}

	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`+q.whereSQL(), q.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tenants: %w", err)
	}
	return n, nil
}

// scanTenant scans a single row into a Tenant model.
func scanTenant(row pgx.Row) (*model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(
		&t.ID,
		&t.LandlordID,
		&t.UserID,
		&t.FirstName,
		&t.LastName,
		&t.Email,
		&t.Phone,
		&t.EmergencyContactName,
		&t.EmergencyContactPhone,
		&t.Notes,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.DeletedAt,
	)
	return &t, err
}
