package repository

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidCursor is returned when a pagination cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// PaginationCursor represents decoded cursor for pagination.
// Rank is set only for listings ordered by a rank column first.
type PaginationCursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Rank      *int      `json:"rank,omitempty"`
}

// encodeCursor encodes pagination cursor to base64.
func encodeCursor(cursor *PaginationCursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes base64 pagination cursor.
func decodeCursor(s string) (*PaginationCursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	var cursor PaginationCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}
	if cursor.ID == "" || cursor.CreatedAt.IsZero() {
		return nil, ErrInvalidCursor
	}

	return &cursor, nil
}

// parseCursor decodes an optional cursor, mapping failures to ErrInvalidCursor.
func parseCursor(s string) (*PaginationCursor, error) {
	if s == "" {
		return nil, nil
	}
	c, err := decodeCursor(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return c, nil
}

// query accumulates WHERE clauses and numbered placeholders.
type query struct {
	where []string
	args  []any
}

// arg appends v and returns its placeholder.
func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

// and adds a clause; each %s in clause is replaced with a placeholder for the matching value.
func (q *query) and(clause string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = q.arg(v)
	}
	q.where = append(q.where, fmt.Sprintf(clause, placeholders...))
}

// whereSQL renders the accumulated clauses.
func (q *query) whereSQL() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// page trims the extra row fetched to detect a following page and builds the next cursor.
func page[T any](items []T, limit int, cursorOf func(T) *PaginationCursor) ([]T, string) {
	if len(items) <= limit {
		return items, ""
	}
	items = items[:limit]
	return items, encodeCursor(cursorOf(items[len(items)-1]))
}
