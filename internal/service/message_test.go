package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/model"
)

func TestCreateThreadReachability(t *testing.T) {
	f := newFixture(t)
	tn := f.tenancy()
	admin := f.user(model.RoleAdmin, "admin@example.com")

	in := CreateThreadInput{Subject: "Hello", Body: "Welcome!", RecipientIDs: []string{tn.tenantUser.UserID}}

	_, err := f.svc.Messages.CreateThread(f.ctx, tn.landlord, in)
	assert.ErrorIs(t, err, ErrRecipientUnreachable)

	f.lease(tn.property, tn.tenant, model.LeaseStatusActive, "2024-01-01", "2024-12-31")
	detail, err := f.svc.Messages.CreateThread(f.ctx, tn.landlord, in)
	require.NoError(t, err)
	assert.Equal(t, []string{tn.landlord.UserID, tn.tenantUser.UserID}, detail.Thread.ParticipantIDs)
	require.Len(t, detail.Messages, 1)

	e := f.events.last()
	assert.Equal(t, activity.MessageSent, e.Type)
	assert.Equal(t, []string{tn.tenantUser.UserID}, e.Recipients)

	stranger := f.user(model.RoleTenant, "stranger@example.com")
	_, err = f.svc.Messages.CreateThread(f.ctx, stranger, CreateThreadInput{
		Subject: "Help", Body: "Locked out", RecipientIDs: []string{admin.UserID},
	})
	assert.NoError(t, err)

	_, err = f.svc.Messages.CreateThread(f.ctx, stranger, CreateThreadInput{
		Subject: "Hi", Body: "?", RecipientIDs: []string{"no-such-user"},
	})
	requireValidationField(t, err, "recipient_ids")
}

func TestCreateThreadValidation(t *testing.T) {
	f := newFixture(t)
	landlord := f.user(model.RoleLandlord, "owner@example.com")

	_, err := f.svc.Messages.CreateThread(f.ctx, landlord, CreateThreadInput{
		Subject:      " ",
		Body:         strings.Repeat("x", 10001),
		RecipientIDs: []string{landlord.UserID, ""},
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "subject")
	assert.Contains(t, ve.Fields, "body")
	assert.Contains(t, ve.Fields, "recipient_ids")
}

func TestThreadConversation(t *testing.T) {
	f := newFixture(t)
	tn := f.tenancy()
	f.lease(tn.property, tn.tenant, model.LeaseStatusActive, "2024-01-01", "2024-12-31")

	clock := testNow
	f.svc.Messages.now = func() time.Time { return clock }

	detail, err := f.svc.Messages.CreateThread(f.ctx, tn.tenantUser, CreateThreadInput{
		Subject: "Heating", Body: "The radiator is cold.", RecipientIDs: []string{tn.landlord.UserID},
	})
	require.NoError(t, err)
	threadID := detail.Thread.ID

	unread, err := f.svc.Messages.UnreadCount(f.ctx, tn.landlord)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	clock = clock.Add(time.Minute)
	_, err = f.svc.Messages.PostMessage(f.ctx, tn.landlord, threadID, "Sending someone tomorrow.")
	require.NoError(t, err)

	unread, err = f.svc.Messages.UnreadCount(f.ctx, tn.landlord)
	require.NoError(t, err)
	assert.Equal(t, 0, unread, "posting marks the thread read for the sender")

	unread, err = f.svc.Messages.UnreadCount(f.ctx, tn.tenantUser)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	clock = clock.Add(time.Minute)
	require.NoError(t, f.svc.Messages.MarkRead(f.ctx, tn.tenantUser, threadID))
	unread, err = f.svc.Messages.UnreadCount(f.ctx, tn.tenantUser)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	got, err := f.svc.Messages.GetThread(f.ctx, tn.landlord, threadID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)

	threads, err := f.svc.Messages.ListThreads(f.ctx, tn.tenantUser, "", 0)
	require.NoError(t, err)
	require.Len(t, threads.Items, 1)
	assert.Equal(t, "Sending someone tomorrow.", threads.Items[0].LastMessage.Body)

	outsider := f.user(model.RoleLandlord, "outsider@example.com")
	_, err = f.svc.Messages.GetThread(f.ctx, outsider, threadID)
	assert.ErrorIs(t, err, ErrThreadNotFound)
	_, err = f.svc.Messages.PostMessage(f.ctx, outsider, threadID, "hi")
	assert.ErrorIs(t, err, ErrThreadNotFound)
}
