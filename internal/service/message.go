package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

const maxMessageLength = 10000

// MessageService handles threads between landlords, tenants and admins.
type MessageService struct {
	core
}

// CreateThreadInput defines a new conversation and its first message.
type CreateThreadInput struct {
	Subject      string
	RecipientIDs []string
	Body         string
	PropertyID   *string
}

// ThreadDetail is a thread with all of its messages, oldest first.
type ThreadDetail struct {
	Thread   *model.Thread
	Messages []*model.Message
}

// ListThreads returns the caller's threads, most recently active first.
func (s *MessageService) ListThreads(ctx context.Context, actor *model.AuthContext, cursor string, limit int) (*Page[*model.ThreadSummary], error) {
	items, next, err := s.store.ListThreadSummaries(ctx, actor.UserID, cursor, clampLimit(limit))
	if err != nil {
		return nil, translate(err, "list threads")
	}
	return &Page[*model.ThreadSummary]{Items: items, NextCursor: next}, nil
}

// CreateThread starts a conversation. Tenants may write to the landlords of
// their leases and landlords to their tenants; anyone may write to an admin.
func (s *MessageService) CreateThread(ctx context.Context, actor *model.AuthContext, input CreateThreadInput) (*ThreadDetail, error) {
	recipients := make([]string, 0, len(input.RecipientIDs))
	for _, id := range input.RecipientIDs {
		id = strings.TrimSpace(id)
		if id == "" || id == actor.UserID || slices.Contains(recipients, id) {
			continue
		}
		recipients = append(recipients, id)
	}

	var v validator
	v.check(strings.TrimSpace(input.Subject) != "", "subject", "is required")
	v.check(len(recipients) > 0, "recipient_ids", "must name at least one other user")
	checkBody(&v, input.Body)
	if err := v.err(); err != nil {
		return nil, err
	}

	for _, id := range recipients {
		if err := s.checkReachable(ctx, actor, id); err != nil {
			return nil, err
		}
	}
	if input.PropertyID != nil && *input.PropertyID == "" {
		input.PropertyID = nil
	}

	now := s.nowUTC()
	thread := &model.Thread{
		ID:             newID(),
		Subject:        strings.TrimSpace(input.Subject),
		PropertyID:     input.PropertyID,
		CreatedBy:      actor.UserID,
		ParticipantIDs: append([]string{actor.UserID}, recipients...),
		LastMessageAt:  now,
		CreatedAt:      now,
	}
	msg := &model.Message{
		ID:        newID(),
		ThreadID:  thread.ID,
		SenderID:  actor.UserID,
		Body:      strings.TrimSpace(input.Body),
		CreatedAt: now,
	}

	err := s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.CreateThread(ctx, thread); err != nil {
			return err
		}
		if err := tx.CreateMessage(ctx, msg); err != nil {
			return err
		}
		return tx.MarkThreadRead(ctx, thread.ID, actor.UserID, now)
	})
	if err != nil {
		return nil, translate(err, "create thread")
	}

	s.announce(ctx, actor, thread)
	return &ThreadDetail{Thread: thread, Messages: []*model.Message{msg}}, nil
}

// checkReachable enforces who may start a conversation with whom.
func (s *MessageService) checkReachable(ctx context.Context, actor *model.AuthContext, recipientID string) error {
	recipient, err := s.store.GetUserByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fieldError("recipient_ids", "unknown user "+recipientID)
		}
		return translate(err, "get recipient")
	}
	if actor.IsAdmin() || recipient.Role == model.RoleAdmin {
		return nil
	}

	var shares bool
	switch {
	case actor.IsTenant() && recipient.Role == model.RoleLandlord:
		shares, err = s.store.SharesLease(ctx, recipient.ID, actor.UserID)
	case actor.IsLandlord() && recipient.Role == model.RoleTenant:
		shares, err = s.store.SharesLease(ctx, actor.UserID, recipient.ID)
	}
	if err != nil {
		return translate(err, "check lease relation")
	}
	if !shares {
		return ErrRecipientUnreachable
	}
	return nil
}

// GetThread returns a thread with its messages. Only participants see it.
func (s *MessageService) GetThread(ctx context.Context, actor *model.AuthContext, id string) (*ThreadDetail, error) {
	thread, err := s.participantThread(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, thread.ID)
	if err != nil {
		return nil, translate(err, "list messages")
	}
	return &ThreadDetail{Thread: thread, Messages: msgs}, nil
}

func (s *MessageService) participantThread(ctx context.Context, actor *model.AuthContext, id string) (*model.Thread, error) {
	thread, err := s.store.GetThread(ctx, id)
	if err != nil {
		return nil, translate(err, "get thread")
	}
	if !thread.HasParticipant(actor.UserID) {
		return nil, ErrThreadNotFound
	}
	return thread, nil
}

// PostMessage appends a message to a thread the caller takes part in.
func (s *MessageService) PostMessage(ctx context.Context, actor *model.AuthContext, threadID, body string) (*model.Message, error) {
	var v validator
	checkBody(&v, body)
	if err := v.err(); err != nil {
		return nil, err
	}

	thread, err := s.participantThread(ctx, actor, threadID)
	if err != nil {
		return nil, err
	}

	now := s.nowUTC()
	msg := &model.Message{
		ID:        newID(),
		ThreadID:  thread.ID,
		SenderID:  actor.UserID,
		Body:      strings.TrimSpace(body),
		CreatedAt: now,
	}
	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.CreateMessage(ctx, msg); err != nil {
			return err
		}
		return tx.MarkThreadRead(ctx, thread.ID, actor.UserID, now)
	})
	if err != nil {
		return nil, translate(err, "post message")
	}

	thread.LastMessageAt = now
	s.announce(ctx, actor, thread)
	return msg, nil
}

// MarkRead records that the caller has read the thread up to now.
func (s *MessageService) MarkRead(ctx context.Context, actor *model.AuthContext, threadID string) error {
	thread, err := s.participantThread(ctx, actor, threadID)
	if err != nil {
		return err
	}
	if err := s.store.MarkThreadRead(ctx, thread.ID, actor.UserID, s.nowUTC()); err != nil {
		return translate(err, "mark thread read")
	}
	s.invalidate(ctx, actor.UserID)
	return nil
}

// UnreadCount totals unread messages across the caller's threads.
func (s *MessageService) UnreadCount(ctx context.Context, actor *model.AuthContext) (int, error) {
	n, err := s.store.CountUnreadMessages(ctx, actor.UserID)
	if err != nil {
		return 0, translate(err, "count unread messages")
	}
	return n, nil
}

func (s *MessageService) announce(ctx context.Context, actor *model.AuthContext, thread *model.Thread) {
	sender := actor.Email
	if u, err := s.store.GetUserByID(ctx, actor.UserID); err == nil && u.FullName() != "" {
		sender = u.FullName()
	}

	recipients := make([]string, 0, len(thread.ParticipantIDs))
	for _, id := range thread.ParticipantIDs {
		if id != actor.UserID {
			recipients = append(recipients, id)
		}
	}

	s.publish(activity.MessageSent, actor, "thread", thread.ID, recipients, map[string]string{
		"sender":  sender,
		"subject": thread.Subject,
	})
	s.invalidate(ctx, recipients...)
}

func checkBody(v *validator, body string) {
	body = strings.TrimSpace(body)
	v.check(body != "", "body", "is required")
	v.check(len(body) <= maxMessageLength, "body", "is too long")
}
