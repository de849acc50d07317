package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/rentdesk/rentdesk/internal/model"
)

// ErrPaymentNotFound is returned when a payment does not exist.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentFilter defines filters for listing payments.
// A non-nil TenantIDs restricts the listing to those tenants, even when empty.
type PaymentFilter struct {
	LandlordID string
	TenantIDs  []string
	LeaseID    string
	Status     model.PaymentStatus
}

const paymentColumns = `id, lease_id, landlord_id, tenant_id, amount_cents, method, status, due_date,
	paid_at, reference, notes, recorded_by, created_at, updated_at`

// CreatePayment inserts a new payment.
func (r *Repository) CreatePayment(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (id, lease_id, landlord_id, tenant_id, amount_cents, method, status, due_date,
			paid_at, reference, notes, recorded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.LeaseID,
		p.LandlordID,
		p.TenantID,
		p.AmountCents,
		p.Method,
		p.Status,
		p.DueDate,
		p.PaidAt,
		p.Reference,
		p.Notes,
		p.RecordedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetPayment retrieves a payment by ID.
func (r *Repository) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// ListPayments retrieves a paginated list of payments, newest first.
func (r *Repository) ListPayments(ctx context.Context, filter PaymentFilter, cursor string, limit int) ([]*model.Payment, string, error) {
	cursorData, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	q := paymentQuery(filter)
	if cursorData != nil {
		q.and("(created_at, id) < (%s, %s)", cursorData.CreatedAt, cursorData.ID)
	}

	sql := `SELECT ` + paymentColumns + ` FROM payments` + q.whereSQL() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + q.arg(limit+1)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating payments: %w", err)
	}

	payments, next := page(payments, limit, func(p *model.Payment) *PaginationCursor {
		return &PaginationCursor{ID: p.ID, CreatedAt: p.CreatedAt}
	})
	return payments, next, nil
}

// UpdatePaymentStatus writes status, paid_at and notes.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, p *model.Payment) error {
	result, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status = $2, paid_at = $3, notes = $4, updated_at = $5
		WHERE id = $1
	`, p.ID, p.Status, p.PaidAt, p.Notes, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// SumCompletedPayments totals completed payments of a lease.
func (r *Repository) SumCompletedPayments(ctx context.Context, leaseID string) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)::BIGINT
		FROM payments
		WHERE lease_id = $1 AND status = 'completed'
	`, leaseID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}

// SumPaymentsPaidSince totals completed payments paid at or after since.
// An empty landlordID sums across all landlords.
func (r *Repository) SumPaymentsPaidSince(ctx context.Context, landlordID string, since time.Time) (int64, error) {
	q := query{where: []string{"status = 'completed'"}}
	q.and("paid_at >= %s", since)
	if landlordID != "" {
		q.and("landlord_id = %s", landlordID)
	}

	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)::BIGINT FROM payments`+q.whereSQL(),
		q.args...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}

// CountPayments counts payments matching the filter.
func (r *Repository) CountPayments(ctx context.Context, filter PaymentFilter) (int, error) {
	q := paymentQuery(filter)

	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+q.whereSQL(), q.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return n, nil
}

func paymentQuery(filter PaymentFilter) query {
	var q query
	if filter.LandlordID != "" {
		q.and("landlord_id = %s", filter.LandlordID)
	}
	if filter.TenantIDs != nil {
		q.and("tenant_id = ANY(%s)", pq.Array(filter.TenantIDs))
	}
	if filter.LeaseID != "" {
		q.and("lease_id = %s", filter.LeaseID)
	}
	if filter.Status != "" {
		q.and("status = %s", filter.Status)
	}
	return q
}

// scanPayment scans a single row into a Payment model.
func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.LeaseID,
		&p.LandlordID,
		&p.TenantID,
		&p.AmountCents,
		&p.Method,
		&p.Status,
		&p.DueDate,
		&p.PaidAt,
		&p.Reference,
		&p.Notes,
		&p.RecordedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return &p, err
}
