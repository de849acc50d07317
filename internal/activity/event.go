// Package activity publishes domain events and turns them into notifications.
package activity

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// Event types emitted by the services.
const (
	LeaseCreated             = "lease.created"
	LeaseActivated           = "lease.activated"
	LeaseRenewed             = "lease.renewed"
	LeaseTerminated          = "lease.terminated"
	LeaseExpired             = "lease.expired"
	MaintenanceCreated       = "maintenance.created"
	MaintenanceStatusChanged = "maintenance.status_changed"
	MessageSent              = "message.sent"
	PaymentRecorded          = "payment.recorded"
	PaymentStatusChanged     = "payment.status_changed"
)

const (
	maxRecipients = 100
	maxAttrLength = 500
)

// Event is the payload written to the activity stream.
type Event struct {
	Type       string            `json:"type"`
	ActorID    string            `json:"actor,omitempty"`
	EntityType string            `json:"et"`
	EntityID   string            `json:"eid"`
	Recipients []string          `json:"to"`
	Attrs      map[string]string `json:"a,omitempty"`
	OccurredAt int64             `json:"t"` // Unix milliseconds
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType, actorID, entityType, entityID string, recipients []string, attrs map[string]string) Event {
	return Event{
		Type:       eventType,
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Recipients: recipients,
		Attrs:      attrs,
		OccurredAt: time.Now().UnixMilli(),
	}
}

type template struct {
	title string
	body  string
}

var templates = map[string]template{
	LeaseCreated:             {"New lease", "A lease for {property} starting {start_date} was created."},
	LeaseActivated:           {"Lease active", "The lease for {property} is now active."},
	LeaseRenewed:             {"Lease renewed", "The lease for {property} was renewed until {end_date}."},
	LeaseTerminated:          {"Lease terminated", "The lease for {property} was terminated."},
	LeaseExpired:             {"Lease expired", "The lease for {property} ended on {end_date}."},
	MaintenanceCreated:       {"New maintenance request", "{title} ({priority})"},
	MaintenanceStatusChanged: {"Maintenance request updated", "{title} is now {status}."},
	MessageSent:              {"New message", "{sender}: {subject}"},
	PaymentRecorded:          {"Payment recorded", "A payment of {amount} was recorded ({status})."},
	PaymentStatusChanged:     {"Payment updated", "A payment of {amount} is now {status}."},
}

// KnownTypes returns every event type the worker can render, sorted.
func KnownTypes() []string {
	types := make([]string, 0, len(templates))
	for t := range templates {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Validate checks an event read back from the stream.
func Validate(e Event) error {
	if _, ok := templates[e.Type]; !ok {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.EntityType == "" {
		return errors.New("entity_type is required")
	}
	if e.EntityID == "" {
		return errors.New("entity_id is required")
	}
	if e.OccurredAt <= 0 {
		return errors.New("occurred_at must be set")
	}
	if len(e.Recipients) > maxRecipients {
		return fmt.Errorf("too many recipients (%d)", len(e.Recipients))
	}
	for _, r := range e.Recipients {
		if r == "" {
			return errors.New("recipient ids must not be empty")
		}
	}
	for k, v := range e.Attrs {
		if len(v) > maxAttrLength {
			return fmt.Errorf("attribute %q too long", k)
		}
	}
	return nil
}

// Render produces the notification title and body for an event.
// Unknown placeholders are left as is.
func Render(e Event) (title, body string) {
	tmpl, ok := templates[e.Type]
	if !ok {
		return e.Type, ""
	}
	if len(e.Attrs) == 0 {
		return tmpl.title, tmpl.body
	}
	pairs := make([]string, 0, len(e.Attrs)*2)
	for k, v := range e.Attrs {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return tmpl.title, strings.NewReplacer(pairs...).Replace(tmpl.body)
}

// ResolveRecipients returns the distinct recipients excluding the actor,
// in first-seen order.
func ResolveRecipients(e Event) []string {
	out := make([]string, 0, len(e.Recipients))
	for _, r := range e.Recipients {
		if r == e.ActorID || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
