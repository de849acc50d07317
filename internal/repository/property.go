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

// ErrPropertyNotFound is returned when a property does not exist or is deleted.
var ErrPropertyNotFound = errors.New("property not found")

// PropertyFilter defines filters for listing properties.
// An empty LandlordID lists every landlord's properties.
type PropertyFilter struct {
	LandlordID string
	Status     model.PropertyStatus
	City       string
	Query      string
}

const propertyColumns = `id, landlord_id, name, address_line1, address_line2, city, state, postal_code,
	property_type, bedrooms, bathrooms, square_feet, rent_cents, status, description, amenities,
	created_at, updated_at, deleted_at`

// CreateProperty inserts a new property.
func (r *Repository) CreateProperty(ctx context.Context, p *model.Property) error {
	query := `
		INSERT INTO properties (id, landlord_id, name, address_line1, address_line2, city, state, postal_code,
			property_type, bedrooms, bathrooms, square_feet, rent_cents, status, description, amenities,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.LandlordID,
		p.Name,
		p.AddressLine1,
		p.AddressLine2,
		p.City,
		p.State,
		p.PostalCode,
		p.PropertyType,
		p.Bedrooms,
		p.Bathrooms,
		p.SquareFeet,
		p.RentCents,
		p.Status,
		p.Description,
		pq.Array(nonNilStrings(p.Amenities)),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

// GetProperty retrieves a live property by ID.
func (r *Repository) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 AND deleted_at IS NULL`

	p, err := scanProperty(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return p, nil
}

// ListProperties retrieves a paginated list of properties, newest first.
func (r *Repository) ListProperties(ctx context.Context, filter PropertyFilter, cursor string, limit int) ([]*model.Property, string, error) {
	cursorData, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	q := query{where: []string{"deleted_at IS NULL"}}
	if filter.LandlordID != "" {
		q.and("landlord_id = %s", filter.LandlordID)
	}
	if filter.Status != "" {
		q.and("status = %s", filter.Status)
	}
	if filter.City != "" {
		q.and("LOWER(city) = LOWER(%s)", filter.City)
	}
	if filter.Query != "" {
		q.and("(name ILIKE %s OR address_line1 ILIKE %[1]s)", "%"+escapeLike(filter.Query)+"%")
	}
	if cursorData != nil {
		q.and("(created_at, id) < (%s, %s)", cursorData.CreatedAt, cursorData.ID)
	}

	sql := `SELECT ` + propertyColumns + ` FROM properties` + q.whereSQL() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + q.arg(limit+1)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var properties []*model.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating properties: %w", err)
	}

	properties, next := page(properties, limit, func(p *model.Property) *PaginationCursor {
		return &PaginationCursor{ID: p.ID, CreatedAt: p.CreatedAt}
	})
	return properties, next, nil
}

// UpdateProperty updates a property's mutable fields.
func (r *Repository) UpdateProperty(ctx context.Context, p *model.Property) error {
	query := `
		UPDATE properties
		SET name = $2, address_line1 = $3, address_line2 = $4, city = $5, state = $6, postal_code = $7,
			property_type = $8, bedrooms = $9, bathrooms = $10, square_feet = $11, rent_cents = $12,
			status = $13, description = $14, amenities = $15, updated_at = $16
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.AddressLine1,
		p.AddressLine2,
		p.City,
		p.State,
		p.PostalCode,
		p.PropertyType,
		p.Bedrooms,
		p.Bathrooms,
		p.SquareFeet,
		p.RentCents,
		p.Status,
		p.Description,
		pq.Array(nonNilStrings(p.Amenities)),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

// SetPropertyStatus changes only the occupancy status.
func (r *Repository) SetPropertyStatus(ctx context.Context, id string, status model.PropertyStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE properties SET status = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to set property status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// DeleteProperty performs a soft delete on a property.
func (r *Repository) DeleteProperty(ctx context.Context, id string) error {
	query := `
		UPDATE properties
		SET deleted_at = $2, status = 'inactive'
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

// CountPropertiesByStatus counts live properties per status.
// An empty landlordID counts across all landlords.
func (r *Repository) CountPropertiesByStatus(ctx context.Context, landlordID string) (map[model.PropertyStatus]int, error) {
	q := query{where: []string{"deleted_at IS NULL"}}
	if landlordID != "" {
		q.and("landlord_id = %s", landlordID)
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM properties`+q.whereSQL()+` GROUP BY status`, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.PropertyStatus]int)
	for rows.Next() {
		var status model.PropertyStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan property count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// scanProperty scans a single row into a Property model.
func scanProperty(row pgx.Row) (*model.Property, error) {
	var p model.Property
	err := row.Scan(
		&p.ID,
		&p.LandlordID,
		&p.Name,
		&p.AddressLine1,
		&p.AddressLine2,
		&p.City,
		&p.State,
		&p.PostalCode,
		&p.PropertyType,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.SquareFeet,
		&p.RentCents,
		&p.Status,
		&p.Description,
		pq.Array(&p.Amenities),
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	return &p, err
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// escapeLike escapes LIKE metacharacters in user input.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
