package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/model"
)

func TestPaymentRecord(t *testing.T) {
	f := newFixture(t)
	tn := f.tenancy()
	lease := f.lease(tn.property, tn.tenant, model.LeaseStatusActive, "2024-01-01", "2024-12-31")

	t.Run("landlord payments settle immediately", func(t *testing.T) {
		p, err := f.svc.Payments.Record(f.ctx, tn.landlord, RecordPaymentInput{
			LeaseID:     lease.ID,
			AmountCents: 150000,
			Method:      model.PaymentMethodACH,
		})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusCompleted, p.Status)
		require.NotNil(t, p.PaidAt)
		assert.True(t, p.PaidAt.Equal(testNow))
		assert.Equal(t, tn.tenant.ID, p.TenantID)

		e := f.events.last()
		assert.Equal(t, activity.PaymentRecorded, e.Type)
		assert.Equal(t, "$1500.00", e.Attrs["amount"])
	})

	t.Run("tenant claims start pending", func(t *testing.T) {
		p, err := f.svc.Payments.Record(f.ctx, tn.tenantUser, RecordPaymentInput{
			LeaseID:     lease.ID,
			AmountCents: 150000,
			Status:      model.PaymentStatusCompleted,
		})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPending, p.Status)
		assert.Equal(t, model.PaymentMethodOther, p.Method)
		assert.Nil(t, p.PaidAt)
	})

	t.Run("landlord may only pick pending or completed", func(t *testing.T) {
		_, err := f.svc.Payments.Record(f.ctx, tn.landlord, RecordPaymentInput{
			LeaseID:     lease.ID,
			AmountCents: 100,
			Status:      model.PaymentStatusRefunded,
		})
		requireValidationField(t, err, "status")
	})

	t.Run("draft leases take no payments", func(t *testing.T) {
		draft := f.lease(f.property(tn.landlord.UserID), tn.tenant, model.LeaseStatusDraft, "2024-07-01", "2025-06-30")
		_, err := f.svc.Payments.Record(f.ctx, tn.landlord, RecordPaymentInput{LeaseID: draft.ID, AmountCents: 100})
		requireValidationField(t, err, "lease_id")
	})

	t.Run("outsiders cannot see the lease", func(t *testing.T) {
		outsider := f.user(model.RoleTenant, "outsider@example.com")
		_, err := f.svc.Payments.Record(f.ctx, outsider, RecordPaymentInput{LeaseID: lease.ID, AmountCents: 100})
		assert.ErrorIs(t, err, ErrLeaseNotFound)
	})

	t.Run("amount and method", func(t *testing.T) {
		_, err := f.svc.Payments.Record(f.ctx, tn.landlord, RecordPaymentInput{LeaseID: lease.ID, Method: "barter"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "amount_cents")
		assert.Contains(t, ve.Fields, "method")
	})
}

func TestPaymentStatusUpdates(t *testing.T) {
	f := newFixture(t)
	tn := f.tenancy()
	lease := f.lease(tn.property, tn.tenant, model.LeaseStatusActive, "2024-01-01", "2024-12-31")

	claim, err := f.svc.Payments.Record(f.ctx, tn.tenantUser, RecordPaymentInput{LeaseID: lease.ID, AmountCents: 150000})
	require.NoError(t, err)

	_, err = f.svc.Payments.UpdateStatus(f.ctx, tn.tenantUser, claim.ID, model.PaymentStatusCompleted, "")
	assert.ErrorIs(t, err, ErrForbidden)

	settled, err := f.svc.Payments.UpdateStatus(f.ctx, tn.landlord, claim.ID, model.PaymentStatusCompleted, "cleared")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, settled.Status)
	assert.NotNil(t, settled.PaidAt)
	assert.Equal(t, "cleared", settled.Notes)
	assert.Equal(t, activity.PaymentStatusChanged, f.events.last().Type)

	_, err = f.svc.Payments.UpdateStatus(f.ctx, tn.landlord, claim.ID, model.PaymentStatusPending, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	b, err := f.svc.Leases.Balance(f.ctx, tn.landlord, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), b.PaidCents)

	mine, err := f.svc.Payments.List(f.ctx, tn.tenantUser, ListPaymentsInput{})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1)

	outsider := f.user(model.RoleTenant, "outsider@example.com")
	_, err = f.svc.Payments.Get(f.ctx, outsider, claim.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	none, err := f.svc.Payments.List(f.ctx, outsider, ListPaymentsInput{})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}
