package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rentdesk/rentdesk/internal/model"
)

// ErrMaintenanceNotFound is returned when a maintenance request does not exist.
var ErrMaintenanceNotFound = errors.New("maintenance request not found")

// MaintenanceFilter defines filters for listing maintenance requests.
type MaintenanceFilter struct {
	LandlordID  string
	RequestedBy string
	PropertyID  string
	Status      model.MaintenanceStatus
	Priority    model.MaintenancePriority
	OpenOnly    bool
}

const maintenanceColumns = `id, landlord_id, property_id, tenant_id, requested_by, title, description,
	category, priority, status, assigned_to, scheduled_for, completed_at, cost_cents, resolution_notes,
	created_at, updated_at`

// CreateMaintenanceRequest inserts a new maintenance request.
func (r *Repository) CreateMaintenanceRequest(ctx context.Context, m *model.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (id, landlord_id, property_id, tenant_id, requested_by, title,
			description, category, priority, priority_rank, status, assigned_to, scheduled_for,
			completed_at, cost_cents, resolution_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		m.ID,
		m.LandlordID,
		m.PropertyID,
		m.TenantID,
		m.RequestedBy,
		m.Title,
		m.Description,
		m.Category,
		m.Priority,
		m.Priority.Rank(),
		m.Status,
		m.AssignedTo,
		m.ScheduledFor,
		m.CompletedAt,
		m.CostCents,
		m.ResolutionNotes,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create maintenance request: %w", err)
	}

	return nil
}

// GetMaintenanceRequest retrieves a maintenance request by ID.
func (r *Repository) GetMaintenanceRequest(ctx context.Context, id string) (*model.MaintenanceRequest, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests WHERE id = $1`

	m, err := scanMaintenance(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, fmt.Errorf("failed to get maintenance request: %w", err)
	}

	return m, nil
}

// ListMaintenanceRequests lists requests by priority (emergency first), then newest.
func (r *Repository) ListMaintenanceRequests(ctx context.Context, filter MaintenanceFilter, cursor string, limit int) ([]*model.MaintenanceRequest, string, error) {
	cursorData, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	if cursorData != nil && cursorData.Rank == nil {
		return nil, "", ErrInvalidCursor
	}

	q := maintenanceQuery(filter)
	if cursorData != nil {
		q.and("(priority_rank, created_at, id) < (%s, %s, %s)", *cursorData.Rank, cursorData.CreatedAt, cursorData.ID)
	}

	sql := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests` + q.whereSQL() +
		` ORDER BY priority_rank DESC, created_at DESC, id DESC LIMIT ` + q.arg(limit+1)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list maintenance requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan maintenance request: %w", err)
		}
		requests = append(requests, m)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating maintenance requests: %w", err)
	}

	requests, next := page(requests, limit, func(m *model.MaintenanceRequest) *PaginationCursor {
		rank := m.Priority.Rank()
		return &PaginationCursor{ID: m.ID, CreatedAt: m.CreatedAt, Rank: &rank}
	})
	return requests, next, nil
}

// UpdateMaintenanceRequest writes every mutable column.
func (r *Repository) UpdateMaintenanceRequest(ctx context.Context, m *model.MaintenanceRequest) error {
	query := `
		UPDATE maintenance_requests
		SET title = $2, description = $3, category = $4, priority = $5, priority_rank = $6, status = $7,
			assigned_to = $8, scheduled_for = $9, completed_at = $10, cost_cents = $11,
			resolution_notes = $12, updated_at = $13
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		m.ID,
		m.Title,
		m.Description,
		m.Category,
		m.Priority,
		m.Priority.Rank(),
		m.Status,
		m.AssignedTo,
		m.ScheduledFor,
		m.CompletedAt,
		m.CostCents,
		m.ResolutionNotes,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update maintenance request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMaintenanceNotFound
	}

	return nil
}

// CountOpenMaintenanceByPriority counts unresolved requests per priority.
func (r *Repository) CountOpenMaintenanceByPriority(ctx context.Context, filter MaintenanceFilter) (map[model.MaintenancePriority]int, error) {
	filter.OpenOnly = true
	q := maintenanceQuery(filter)

	rows, err := r.db.Query(ctx,
		`SELECT priority, COUNT(*) FROM maintenance_requests`+q.whereSQL()+` GROUP BY priority`,
		q.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count maintenance requests: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.MaintenancePriority]int)
	for rows.Next() {
		var priority model.MaintenancePriority
		var n int
		if err := rows.Scan(&priority, &n); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance count: %w", err)
		}
		counts[priority] = n
	}
	return counts, rows.Err()
}

func maintenanceQuery(filter MaintenanceFilter) query {
	var q query
	if filter.LandlordID != "" {
		q.and("landlord_id = %s", filter.LandlordID)
	}
	if filter.RequestedBy != "" {
		q.and("requested_by = %s", filter.RequestedBy)
	}
	if filter.PropertyID != "" {
		q.and("property_id = %s", filter.PropertyID)
	}
	if filter.Status != "" {
		q.and("status = %s", filter.Status)
	}
	if filter.Priority != "" {
		q.and("priority = %s", filter.Priority)
	}
	if filter.OpenOnly {
		q.where = append(q.where, "status IN ('open', 'in_progress', 'on_hold')")
	}
	return q
}

// scanMaintenance scans a single row into a MaintenanceRequest model.
func scanMaintenance(row pgx.Row) (*model.MaintenanceRequest, error) {
	var m model.MaintenanceRequest
	err := row.Scan(
		&m.ID,
		&m.LandlordID,
		&m.PropertyID,
		&m.TenantID,
		&m.RequestedBy,
		&m.Title,
		&m.Description,
		&m.Category,
		&m.Priority,
		&m.Status,
		&m.AssignedTo,
		&m.ScheduledFor,
		&m.CompletedAt,
		&m.CostCents,
		&m.ResolutionNotes,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return &m, err
}
