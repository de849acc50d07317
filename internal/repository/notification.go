package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rentdesk/rentdesk/internal/model"
)

// ErrNotificationNotFound is returned when a notification does not exist for the user.
var ErrNotificationNotFound = errors.New("notification not found")

// CreateNotifications inserts one notification per recipient of an event.
// Rows already written for the same event and user are skipped, so a
// redelivered event is harmless. Returns the number of rows inserted.
func (r *Repository) CreateNotifications(ctx context.Context, eventID string, notifications []*model.Notification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(`
			INSERT INTO notifications (id, user_id, kind, title, body, entity_type, entity_id, event_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (event_id, user_id) DO NOTHING
		`, n.ID, n.UserID, n.Kind, n.Title, n.Body, n.EntityType, n.EntityID, eventID, n.CreatedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range notifications {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert notification: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

// ListNotifications retrieves a user's notifications, newest first.
func (r *Repository) ListNotifications(ctx context.Context, userID string, unreadOnly bool, cursor string, limit int) ([]*model.Notification, string, error) {
	cursorData, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	var q query
	q.and("user_id = %s", userID)
	if unreadOnly {
		q.where = append(q.where, "read_at IS NULL")
	}
	if cursorData != nil {
		q.and("(created_at, id) < (%s, %s)", cursorData.CreatedAt, cursorData.ID)
	}

	sql := `
		SELECT id, user_id, kind, title, body, entity_type, entity_id, read_at, created_at
		FROM notifications` + q.whereSQL() + `
		ORDER BY created_at DESC, id DESC
		LIMIT ` + q.arg(limit+1)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.EntityType, &n.EntityID, &n.ReadAt, &n.CreatedAt)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating notifications: %w", err)
	}

	notifications, next := page(notifications, limit, func(n *model.Notification) *PaginationCursor {
		return &PaginationCursor{ID: n.ID, CreatedAt: n.CreatedAt}
	})
	return notifications, next, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
func (r *Repository) MarkNotificationRead(ctx context.Context, id, userID string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of the user as read.
func (r *Repository) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE notifications SET read_at = NOW() WHERE user_id = $1 AND read_at IS NULL`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected(), nil
}
