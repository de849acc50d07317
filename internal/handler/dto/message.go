package dto

import (
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// CreateThreadRequest is the body of POST /messages/threads.
type CreateThreadRequest struct {
	Subject      string   `json:"subject" validate:"required,max=200"`
	RecipientIDs []string `json:"recipient_ids" validate:"required,min=1,max=20,dive,required"`
	Body         string   `json:"body" validate:"required,max=10000"`
	PropertyID   *string  `json:"property_id"`
}

// ToInput converts the request to a service input.
func (r CreateThreadRequest) ToInput() service.CreateThreadInput {
	return service.CreateThreadInput{
		Subject:      r.Subject,
		RecipientIDs: r.RecipientIDs,
		Body:         r.Body,
		PropertyID:   r.PropertyID,
	}
}

// PostMessageRequest is the body of POST /messages/threads/{id}/messages.
type PostMessageRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}

// ThreadSummaryResponse is a thread as listed for the caller.
type ThreadSummaryResponse struct {
	*model.Thread
	LastMessage *model.Message `json:"last_message"`
	UnreadCount int            `json:"unread_count"`
}

// ToThreadSummaryResponse converts a thread summary.
func ToThreadSummaryResponse(s *model.ThreadSummary) ThreadSummaryResponse {
	return ThreadSummaryResponse{
		Thread:      s.Thread,
		LastMessage: s.LastMessage,
		UnreadCount: s.UnreadCount,
	}
}

// ThreadDetailResponse is a thread with its messages, oldest first.
type ThreadDetailResponse struct {
	*model.Thread
	Messages []*model.Message `json:"messages"`
}

// ToThreadDetailResponse converts a thread detail.
func ToThreadDetailResponse(d *service.ThreadDetail) *ThreadDetailResponse {
	msgs := d.Messages
	if msgs == nil {
		msgs = []*model.Message{}
	}
	return &ThreadDetailResponse{Thread: d.Thread, Messages: msgs}
}

// UnreadCountResponse is the body of GET /messages/unread-count.
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
