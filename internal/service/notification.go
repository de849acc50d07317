package service

import (
	"context"

	"github.com/rentdesk/rentdesk/internal/model"
)

// NotificationService exposes a user's notification inbox.
type NotificationService struct {
	core
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor *model.AuthContext, unreadOnly bool, cursor string, limit int) (*Page[*model.Notification], error) {
	items, next, err := s.store.ListNotifications(ctx, actor.UserID, unreadOnly, cursor, clampLimit(limit))
	if err != nil {
		return nil, translate(err, "list notifications")
	}
	return &Page[*model.Notification]{Items: items, NextCursor: next}, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor *model.AuthContext, id string) error {
	if err := s.store.MarkNotificationRead(ctx, id, actor.UserID); err != nil {
		return translate(err, "mark notification read")
	}
	return nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor *model.AuthContext) (int64, error) {
	n, err := s.store.MarkAllNotificationsRead(ctx, actor.UserID)
	if err != nil {
		return 0, translate(err, "mark notifications read")
	}
	return n, nil
}
