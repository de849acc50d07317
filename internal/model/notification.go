package model

import "time"

// Notification is an in-app message for one user about a domain event.
type Notification struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Kind       string     `json:"kind"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	EntityType string     `json:"entity_type,omitempty"`
	EntityID   string     `json:"entity_id,omitempty"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsRead reports whether the user has seen the notification.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
