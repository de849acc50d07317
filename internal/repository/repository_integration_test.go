//go:build integration

package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/testutil"
)

func TestIntegrationRepository_Users(t *testing.T) {
	ctx, repo := newTestRepository(t)

	user := testutil.NewTestUser(t, model.RoleLandlord)
	require.NoError(t, repo.CreateUser(ctx, user))

	dup := testutil.NewTestUser(t, model.RoleTenant)
	dup.Email = user.Email
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), ErrEmailExists)

	byEmail, err := repo.GetUserByEmail(ctx, strings.ToUpper(user.Email))
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, user.PasswordHash, byEmail.PasswordHash)

	user.Disabled = true
	user.Phone = "+1 555 0100"
	require.NoError(t, repo.UpdateUser(ctx, user))

	loaded, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Disabled)
	assert.Equal(t, "+1 555 0100", loaded.Phone)

	_, err = repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	counts, err := repo.CountUsersByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.RoleLandlord])
}

func TestIntegrationRepository_ListPropertiesPaginates(t *testing.T) {
	ctx, repo := newTestRepository(t)
	landlord := createUser(t, ctx, repo, model.RoleLandlord)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := testutil.NewTestProperty(t, landlord.ID)
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.CreateProperty(ctx, p))
	}

	first, cursor, err := repo.ListProperties(ctx, PropertyFilter{LandlordID: landlord.ID}, "", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, cursor)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))
	assert.Equal(t, []string{"parking", "laundry"}, first[0].Amenities)

	seen := map[string]bool{first[0].ID: true, first[1].ID: true}
	for cursor != "" {
		var next []*model.Property
		next, cursor, err = repo.ListProperties(ctx, PropertyFilter{LandlordID: landlord.ID}, cursor, 2)
		require.NoError(t, err)
		for _, p := range next {
			assert.False(t, seen[p.ID], "duplicate across pages")
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, 5)

	_, _, err = repo.ListProperties(ctx, PropertyFilter{}, "garbage", 2)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestIntegrationRepository_PropertySearchAndSoftDelete(t *testing.T) {
	ctx, repo := newTestRepository(t)
	landlord := createUser(t, ctx, repo, model.RoleLandlord)

	p := testutil.NewTestProperty(t, landlord.ID)
	p.Name = "Harbor View 100%"
	require.NoError(t, repo.CreateProperty(ctx, p))
	other := testutil.NewTestProperty(t, landlord.ID)
	other.City = "Shelbyville"
	require.NoError(t, repo.CreateProperty(ctx, other))

	found, _, err := repo.ListProperties(ctx, PropertyFilter{LandlordID: landlord.ID, Query: "100%"}, "", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p.ID, found[0].ID)

	found, _, err = repo.ListProperties(ctx, PropertyFilter{City: "shelbyville"}, "", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, repo.DeleteProperty(ctx, p.ID))
	_, err = repo.GetProperty(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	assert.ErrorIs(t, repo.DeleteProperty(ctx, p.ID), ErrPropertyNotFound)
}

func TestIntegrationRepository_TenantLinkingAndUniqueEmail(t *testing.T) {
	ctx, repo := newTestRepository(t)
	landlord := createUser(t, ctx, repo, model.RoleLandlord)

	tenant := testutil.NewTestTenant(t, landlord.ID)
	require.NoError(t, repo.CreateTenant(ctx, tenant))

	dup := testutil.NewTestTenant(t, landlord.ID)
	dup.Email = tenant.Email
	assert.ErrorIs(t, repo.CreateTenant(ctx, dup), ErrTenantEmailExists)

	user := testutil.NewTestUser(t, model.RoleTenant)
	user.Email = tenant.Email
	require.NoError(t, repo.CreateUser(ctx, user))

	linked, err := repo.LinkTenantsToUser(ctx, user.Email, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, linked)

	ids, err := repo.ListTenantIDsForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tenant.ID}, ids)
}

func TestIntegrationRepository_LeaseQueries(t *testing.T) {
	ctx, repo := newTestRepository(t)
	landlord := createUser(t, ctx, repo, model.RoleLandlord)
	property := testutil.NewTestProperty(t, landlord.ID)
	require.NoError(t, repo.CreateProperty(ctx, property))
	tenant := testutil.NewTestTenant(t, landlord.ID)
	require.NoError(t, repo.CreateTenant(ctx, tenant))

	active := testutil.NewTestLease(t, property, tenant, model.LeaseStatusActive)
	require.NoError(t, repo.CreateLease(ctx, active))

	loaded, err := repo.GetLease(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.StartDate.String(), loaded.StartDate.String())
	assert.Equal(t, active.EndDate.String(), loaded.EndDate.String())

	has, err := repo.HasActiveLease(ctx, property.ID, "")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = repo.HasActiveLease(ctx, property.ID, active.ID)
	require.NoError(t, err)
	assert.False(t, has)

	open, err := repo.HasOpenLease(ctx, "", tenant.ID)
	require.NoError(t, err)
	assert.True(t, open)

	expiring, err := repo.ListExpiringLeases(ctx, landlord.ID, model.Today(), model.Today().AddDays(400))
	require.NoError(t, err)
	require.Len(t, expiring, 1)

	// Backdate so the sweeper picks it up.
	active.StartDate = model.Today().AddMonths(-13)
	active.EndDate = model.Today().AddDays(-1)
	active.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.UpdateLease(ctx, active))

	due, err := repo.ListLeasesToSweep(ctx, model.Today())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, active.ID, due[0].ID)

	filtered, _, err := repo.ListLeases(ctx, LeaseFilter{TenantIDs: []string{}}, "", 10)
	require.NoError(t, err)
	assert.Empty(t, filtered, "empty tenant scope must match nothing")

	assert.ErrorIs(t, repo.DeleteLease(ctx, active.ID), ErrLeaseNotFound, "only drafts are deletable")
}

func TestIntegrationRepository_WithTxRollsBack(t *testing.T) {
	ctx, repo := newTestRepository(t)
	landlord := createUser(t, ctx, repo, model.RoleLandlord)

	boom := errors.New("boom")
	property := testutil.NewTestProperty(t, landlord.ID)
	err := repo.WithTx(ctx, func(tx *Repository) error {
		if err := tx.CreateProperty(ctx, property); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetProperty(ctx, property.ID)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestIntegrationRepository_MessagesAndUnread(t *testing.T) {
	ctx, repo := newTestRepository(t)
	landlord := createUser(t, ctx, repo, model.RoleLandlord)
	renter := createUser(t, ctx, repo, model.RoleTenant)

	now := time.Now().UTC()
	thread := &model.Thread{
		ID:             testutil.UniqueID("TH"),
		Subject:        "Leaky faucet",
		CreatedBy:      renter.ID,
		ParticipantIDs: []string{renter.ID, landlord.ID},
		LastMessageAt:  now,
		CreatedAt:      now,
	}
	require.NoError(t, repo.CreateThread(ctx, thread))

	for i, sender := range []string{renter.ID, renter.ID, landlord.ID} {
		require.NoError(t, repo.CreateMessage(ctx, &model.Message{
			ID:        testutil.UniqueID("M"),
			ThreadID:  thread.ID,
			SenderID:  sender,
			Body:      "message",
			CreatedAt: now.Add(time.Duration(i+1) * time.Second),
		}))
	}

	unread, err := repo.CountUnreadMessages(ctx, landlord.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	summaries, _, err := repo.ListThreadSummaries(ctx, landlord.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].UnreadCount)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, landlord.ID, summaries[0].LastMessage.SenderID)

	require.NoError(t, repo.MarkThreadRead(ctx, thread.ID, landlord.ID, now.Add(time.Minute)))
	unread, err = repo.CountUnreadMessages(ctx, landlord.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	messages, err := repo.ListMessages(ctx, thread.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestIntegrationRepository_NotificationsAreIdempotentPerEvent(t *testing.T) {
	ctx, repo := newTestRepository(t)
	user := createUser(t, ctx, repo, model.RoleLandlord)

	build := func() []*model.Notification {
		return []*model.Notification{{
			ID:        testutil.UniqueID("N"),
			UserID:    user.ID,
			Kind:      "lease.created",
			Title:     "Lease created",
			CreatedAt: time.Now().UTC(),
		}}
	}

	n, err := repo.CreateNotifications(ctx, "1700000000000-0", build())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.CreateNotifications(ctx, "1700000000000-0", build())
	require.NoError(t, err)
	assert.Zero(t, n)

	list, _, err := repo.ListNotifications(ctx, user.ID, true, "", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.MarkNotificationRead(ctx, list[0].ID, user.ID))
	assert.ErrorIs(t, repo.MarkNotificationRead(ctx, list[0].ID, "someone-else"), ErrNotificationNotFound)

	list, _, err = repo.ListNotifications(ctx, user.ID, true, "", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func newTestRepository(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func createUser(t *testing.T, ctx context.Context, repo *Repository, role string) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t, role)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
