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

// ErrThreadNotFound is returned when a message thread does not exist.
var ErrThreadNotFound = errors.New("thread not found")

const threadColumns = `t.id, t.subject, t.property_id, t.created_by, t.participant_ids, t.last_message_at, t.created_at`

// CreateThread inserts a new thread. Its first message is added with CreateMessage.
func (r *Repository) CreateThread(ctx context.Context, t *model.Thread) error {
	query := `
		INSERT INTO threads (id, subject, property_id, created_by, participant_ids, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.Subject,
		t.PropertyID,
		t.CreatedBy,
		pq.Array(t.ParticipantIDs),
		t.LastMessageAt,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}

	return nil
}

// GetThread retrieves a thread by ID.
func (r *Repository) GetThread(ctx context.Context, id string) (*model.Thread, error) {
	query := `SELECT ` + threadColumns + ` FROM threads t WHERE t.id = $1`

	t, err := scanThread(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}

	return t, nil
}

// CreateMessage appends a message and bumps the thread's last activity.
func (r *Repository) CreateMessage(ctx context.Context, m *model.Message) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO messages (id, thread_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.ThreadID, m.SenderID, m.Body, m.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrThreadNotFound
		}
		return fmt.Errorf("failed to create message: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		UPDATE threads SET last_message_at = GREATEST(last_message_at, $2) WHERE id = $1
	`, m.ThreadID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to bump thread activity: %w", err)
	}

	return nil
}

// ListMessages returns a thread's messages, oldest first.
func (r *Repository) ListMessages(ctx context.Context, threadID string) ([]*model.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, thread_id, sender_id, body, created_at
		FROM messages
		WHERE thread_id = $1
		ORDER BY created_at, id
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// ListThreadSummaries lists a participant's threads by latest activity,
// each with its last message and the caller's unread count.
func (r *Repository) ListThreadSummaries(ctx context.Context, userID, cursor string, limit int) ([]*model.ThreadSummary, string, error) {
	cursorData, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	var q query
	q.and("%s = ANY(t.participant_ids)", userID)
	if cursorData != nil {
		q.and("(t.last_message_at, t.id) < (%s, %s)", cursorData.CreatedAt, cursorData.ID)
	}

	sql := `
		SELECT ` + threadColumns + `,
			lm.id, lm.sender_id, lm.body, lm.created_at,
			(
				SELECT COUNT(*)
				FROM messages mu
				WHERE mu.thread_id = t.id
				  AND mu.sender_id <> $1
				  AND mu.created_at > COALESCE(tr.last_read_at, '-infinity'::timestamptz)
			) AS unread_count
		FROM threads t
		LEFT JOIN thread_reads tr ON tr.thread_id = t.id AND tr.user_id = $1
		LEFT JOIN LATERAL (
			SELECT id, sender_id, body, created_at
			FROM messages
			WHERE thread_id = t.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE` + q.whereSQL() + `
		ORDER BY t.last_message_at DESC, t.id DESC
		LIMIT ` + q.arg(limit+1)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var summaries []*model.ThreadSummary
	for rows.Next() {
		var (
			t          model.Thread
			msgID      *string
			msgSender  *string
			msgBody    *string
			msgCreated *time.Time
			unread     int
		)
		err := rows.Scan(
			&t.ID, &t.Subject, &t.PropertyID, &t.CreatedBy, pq.Array(&t.ParticipantIDs), &t.LastMessageAt, &t.CreatedAt,
			&msgID, &msgSender, &msgBody, &msgCreated,
			&unread,
		)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan thread: %w", err)
		}

		summary := &model.ThreadSummary{Thread: &t, UnreadCount: unread}
		if msgID != nil {
			summary.LastMessage = &model.Message{
				ID:        *msgID,
				ThreadID:  t.ID,
				SenderID:  *msgSender,
				Body:      *msgBody,
				CreatedAt: *msgCreated,
			}
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating threads: %w", err)
	}

	summaries, next := page(summaries, limit, func(s *model.ThreadSummary) *PaginationCursor {
		return &PaginationCursor{ID: s.Thread.ID, CreatedAt: s.Thread.LastMessageAt}
	})
	return summaries, next, nil
}

// MarkThreadRead records that userID has read the thread up to at.
func (r *Repository) MarkThreadRead(ctx context.Context, threadID, userID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO thread_reads (thread_id, user_id, last_read_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (thread_id, user_id)
		DO UPDATE SET last_read_at = GREATEST(thread_reads.last_read_at, EXCLUDED.last_read_at)
	`, threadID, userID, at)
	if err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return nil
}

// CountUnreadMessages counts messages from others the user has not read yet.
func (r *Repository) CountUnreadMessages(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN threads t ON t.id = m.thread_id
		LEFT JOIN thread_reads tr ON tr.thread_id = t.id AND tr.user_id = $1
		WHERE $1 = ANY(t.participant_ids)
		  AND m.sender_id <> $1
		  AND m.created_at > COALESCE(tr.last_read_at, '-infinity'::timestamptz)
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

// scanThread scans a single row into a Thread model.
func scanThread(row pgx.Row) (*model.Thread, error) {
	var t model.Thread
	err := row.Scan(
		&t.ID,
		&t.Subject,
		&t.PropertyID,
		&t.CreatedBy,
		pq.Array(&t.ParticipantIDs),
		&t.LastMessageAt,
		&t.CreatedAt,
	)
	return &t, err
}
