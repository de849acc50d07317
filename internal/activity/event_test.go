package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() Event {
	return Event{
		Type:       LeaseCreated,
		ActorID:    "landlord-1",
		EntityType: "lease",
		EntityID:   "lease-1",
		Recipients: []string{"landlord-1", "tenant-user-1"},
		Attrs:      map[string]string{"property": "Maple Court", "start_date": "2024-01-01"},
		OccurredAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).UnixMilli(),
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	long := make([]byte, maxAttrLength+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name    string
		mutate  func(*Event)
		wantErr bool
	}{
		{"valid", func(*Event) {}, false},
		{"no recipients", func(e *Event) { e.Recipients = nil }, false},
		{"unknown type", func(e *Event) { e.Type = "lease.exploded" }, true},
		{"missing entity type", func(e *Event) { e.EntityType = "" }, true},
		{"missing entity id", func(e *Event) { e.EntityID = "" }, true},
		{"missing timestamp", func(e *Event) { e.OccurredAt = 0 }, true},
		{"empty recipient", func(e *Event) { e.Recipients = []string{""} }, true},
		{"too many recipients", func(e *Event) { e.Recipients = make([]string, maxRecipients+1) }, true},
		{"long attribute", func(e *Event) { e.Attrs["property"] = string(long) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := validEvent()
			tt.mutate(&e)
			err := Validate(e)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKnownTypesCoversEveryEvent(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []string{
		LeaseCreated, LeaseActivated, LeaseRenewed, LeaseTerminated, LeaseExpired,
		MaintenanceCreated, MaintenanceStatusChanged,
		MessageSent,
		PaymentRecorded, PaymentStatusChanged,
	}, KnownTypes())
}

func TestRender(t *testing.T) {
	t.Parallel()

	title, body := Render(validEvent())
	assert.Equal(t, "New lease", title)
	assert.Equal(t, "A lease for Maple Court starting 2024-01-01 was created.", body)

	e := validEvent()
	e.Attrs = nil
	_, body = Render(e)
	assert.Contains(t, body, "{property}")
}

func TestResolveRecipients(t *testing.T) {
	t.Parallel()

	e := validEvent()
	e.Recipients = []string{"a", "landlord-1", "b", "a"}
	assert.Equal(t, []string{"a", "b"}, ResolveRecipients(e))

	e.Recipients = []string{"landlord-1"}
	assert.Empty(t, ResolveRecipients(e))
}

func TestBuildNotifications(t *testing.T) {
	t.Parallel()

	e := validEvent()
	got := BuildNotifications(e)
	require.Len(t, got, 1)

	n := got[0]
	assert.Equal(t, "tenant-user-1", n.UserID)
	assert.Equal(t, LeaseCreated, n.Kind)
	assert.Equal(t, "lease", n.EntityType)
	assert.Equal(t, "lease-1", n.EntityID)
	assert.Len(t, n.ID, 26)
	assert.True(t, n.CreatedAt.Equal(time.UnixMilli(e.OccurredAt)))
	assert.False(t, n.IsRead())

	e.Recipients = []string{e.ActorID}
	assert.Nil(t, BuildNotifications(e))
}
