package model

import (
	"slices"
	"time"
)

// Thread is a conversation between two or more users.
type Thread struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject"`
	PropertyID     *string   `json:"property_id,omitempty"`
	CreatedBy      string    `json:"created_by"`
	ParticipantIDs []string  `json:"participant_ids"`
	LastMessageAt  time.Time `json:"last_message_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasParticipant reports whether userID takes part in the thread.
func (t *Thread) HasParticipant(userID string) bool {
	return slices.Contains(t.ParticipantIDs, userID)
}

// Message is a single post in a thread.
type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ThreadSummary is a thread as listed for one participant.
type ThreadSummary struct {
	Thread      *Thread
	LastMessage *Message
	UnreadCount int
}
