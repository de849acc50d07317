package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/rentdesk/rentdesk/internal/model"
)

// ErrLeaseNotFound is returned when a lease does not exist.
var ErrLeaseNotFound = errors.New("lease not found")

// LeaseFilter defines filters for listing leases.
// A non-nil TenantIDs restricts the listing to those tenants, even when empty.
type LeaseFilter struct {
	LandlordID string
	TenantIDs  []string
	PropertyID string
	TenantID   string
	Statuses   []model.LeaseStatus
	EndsFrom   *model.Date
	EndsBy     *model.Date
}

const leaseColumns = `id, landlord_id, property_id, tenant_id, status, start_date, end_date,
	rent_cents, deposit_cents, payment_due_day, renewed_from_id, renewed_to_id,
	terminated_at, termination_reason, notes, created_at, updated_at`

// CreateLease inserts a new lease.
func (r *Repository) CreateLease(ctx context.Context, l *model.Lease) error {
	query := `
		INSERT INTO leases (id, landlord_id, property_id, tenant_id, status, start_date, end_date,
			rent_cents, deposit_cents, payment_due_day, renewed_from_id, renewed_to_id,
			terminated_at, termination_reason, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.Exec(ctx, query,
		l.ID,
		l.LandlordID,
		l.PropertyID,
		l.TenantID,
		l.Status,
		l.StartDate,
		l.EndDate,
		l.RentCents,
		l.DepositCents,
		l.PaymentDueDay,
		l.RenewedFromID,
		l.RenewedToID,
		l.TerminatedAt,
		l.TerminationReason,
		l.Notes,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	return nil
}

// GetLease retrieves a lease by ID.
func (r *Repository) GetLease(ctx context.Context, id string) (*model.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = $1`

	l, err := scanLease(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeaseNotFound
		}
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}

	return l, nil
}

// ListLeases retrieves a paginated list of leases, newest first.
func (r *Repository) ListLeases(ctx context.Context, filter LeaseFilter, cursor string, limit int) ([]*model.Lease, string, error) {
	cursorData, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	q := leaseQuery(filter)
	if cursorData != nil {
		q.and("(created_at, id) < (%s, %s)", cursorData.CreatedAt, cursorData.ID)
	}

	sql := `SELECT ` + leaseColumns + ` FROM leases` + q.whereSQL() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + q.arg(limit+1)

	leases, err := r.queryLeases(ctx, sql, q.args...)
	if err != nil {
		return nil, "", err
	}

	leases, next := page(leases, limit, func(l *model.Lease) *PaginationCursor {
		return &PaginationCursor{ID: l.ID, CreatedAt: l.CreatedAt}
	})
	return leases, next, nil
}

// ListExpiringLeases returns active leases ending within [from, by], soonest first.
func (r *Repository) ListExpiringLeases(ctx context.Context, landlordID string, from, by model.Date) ([]*model.Lease, error) {
	q := leaseQuery(LeaseFilter{
		LandlordID: landlordID,
		Statuses:   []model.LeaseStatus{model.LeaseStatusActive},
		EndsFrom:   &from,
		EndsBy:     &by,
	})
	return r.queryLeases(ctx, `SELECT `+leaseColumns+` FROM leases`+q.whereSQL()+` ORDER BY end_date, id`, q.args...)
}

// ListLeasesForTenants returns every lease of the given tenants, newest first.
func (r *Repository) ListLeasesForTenants(ctx context.Context, tenantIDs []string) ([]*model.Lease, error) {
	if len(tenantIDs) == 0 {
		return nil, nil
	}
	return r.queryLeases(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE tenant_id = ANY($1) ORDER BY created_at DESC, id DESC`,
		pq.Array(tenantIDs),
	)
}

// ListLeasesToSweep returns active leases that ended before today and
// pending leases whose start date has arrived.
func (r *Repository) ListLeasesToSweep(ctx context.Context, today model.Date) ([]*model.Lease, error) {
	return r.queryLeases(ctx, `
		SELECT `+leaseColumns+`
		FROM leases
		WHERE (status = 'active' AND end_date < $1)
		   OR (status = 'pending' AND start_date <= $1)
		ORDER BY start_date, id
	`, today)
}

// UpdateLease writes every mutable lease column.
func (r *Repository) UpdateLease(ctx context.Context, l *model.Lease) error {
	query := `
		UPDATE leases
		SET status = $2, start_date = $3, end_date = $4, rent_cents = $5, deposit_cents = $6,
			payment_due_day = $7, renewed_from_id = $8, renewed_to_id = $9, terminated_at = $10,
			termination_reason = $11, notes = $12, updated_at = $13
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		l.ID,
		l.Status,
		l.StartDate,
		l.EndDate,
		l.RentCents,
		l.DepositCents,
		l.PaymentDueDay,
		l.RenewedFromID,
		l.RenewedToID,
		l.TerminatedAt,
		l.TerminationReason,
		l.Notes,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update lease: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrLeaseNotFound
	}

	return nil
}

// DeleteLease removes a draft lease. Non-draft leases are never deleted.
func (r *Repository) DeleteLease(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM leases WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lease: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrLeaseNotFound
	}
	return nil
}

// HasActiveLease reports whether the property has an active lease other than excludeID.
func (r *Repository) HasActiveLease(ctx context.Context, propertyID, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM leases WHERE property_id = $1 AND status = 'active' AND id <> $2)
	`, propertyID, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active lease: %w", err)
	}
	return exists, nil
}

// HasOpenLease reports whether a pending or active lease references the property or tenant.
// Exactly one of propertyID and tenantID is expected to be set.
func (r *Repository) HasOpenLease(ctx context.Context, propertyID, tenantID string) (bool, error) {
	column, value := "property_id", propertyID
	if tenantID != "" {
		column, value = "tenant_id", tenantID
	}

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM leases WHERE `+column+` = $1 AND status IN ('pending', 'active'))`,
		value,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check open lease: %w", err)
	}
	return exists, nil
}

// SharesLease reports whether a tenant-role user holds any non-draft lease from the landlord.
func (r *Repository) SharesLease(ctx context.Context, landlordID, tenantUserID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM leases l
			JOIN tenants t ON t.id = l.tenant_id
			WHERE l.landlord_id = $1 AND t.user_id = $2 AND l.status <> 'draft'
		)
	`, landlordID, tenantUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check shared lease: %w", err)
	}
	return exists, nil
}

// LockProperty takes a row lock on the property for the rest of the transaction.
func (r *Repository) LockProperty(ctx context.Context, propertyID string) error {
	var id string
	err := r.db.QueryRow(ctx, `SELECT id FROM properties WHERE id = $1 FOR UPDATE`, propertyID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("failed to lock property: %w", err)
	}
	return nil
}

// CountLeasesByStatus counts leases per status for a landlord, or all when landlordID is empty.
func (r *Repository) CountLeasesByStatus(ctx context.Context, landlordID string) (map[model.LeaseStatus]int, error) {
	var q query
	if landlordID != "" {
		q.and("landlord_id = %s", landlordID)
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM leases`+q.whereSQL()+` GROUP BY status`, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count leases: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.LeaseStatus]int)
	for rows.Next() {
		var status model.LeaseStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan lease count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func leaseQuery(filter LeaseFilter) query {
	var q query
	if filter.LandlordID != "" {
		q.and("landlord_id = %s", filter.LandlordID)
	}
	if filter.TenantIDs != nil {
		q.and("tenant_id = ANY(%s)", pq.Array(filter.TenantIDs))
	}
	if filter.PropertyID != "" {
		q.and("property_id = %s", filter.PropertyID)
	}
	if filter.TenantID != "" {
		q.and("tenant_id = %s", filter.TenantID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		q.and("status = ANY(%s)", pq.Array(statuses))
	}
	if filter.EndsFrom != nil {
		q.and("end_date >= %s", *filter.EndsFrom)
	}
	if filter.EndsBy != nil {
		q.and("end_date <= %s", *filter.EndsBy)
	}
	return q
}

func (r *Repository) queryLeases(ctx context.Context, sql string, args ...any) ([]*model.Lease, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}
	defer rows.Close()

	var leases []*model.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lease: %w", err)
		}
		leases = append(leases, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leases: %w", err)
	}
	return leases, nil
}

// scanLease scans a single row into a Lease model.
func scanLease(row pgx.Row) (*model.Lease, error) {
	var l model.Lease
	err := row.Scan(
		&l.ID,
		&l.LandlordID,
		&l.PropertyID,
		&l.TenantID,
		&l.Status,
		&l.StartDate,
		&l.EndDate,
		&l.RentCents,
		&l.DepositCents,
		&l.PaymentDueDay,
		&l.RenewedFromID,
		&l.RenewedToID,
		&l.TerminatedAt,
		&l.TerminationReason,
		&l.Notes,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return &l, err
}
