package dto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/model"
)

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"propertyId":          "property_id",
		"property_id":         "property_id",
		"addressLine1":        "address_line1",
		"rentIncreasePercent": "rent_increase_percent",
		"recipientIDs":        "recipient_ids",
		"propertyID":          "property_id",
		"status":              "status",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}

func TestDecode_CamelAndSnakeCaseMatch(t *testing.T) {
	snake := `{
		"property_id": "p1",
		"tenant_id": "t1",
		"start_date": "2024-07-01",
		"end_date": "2025-06-30",
		"rent_cents": 150000,
		"deposit_cents": 150000,
		"payment_due_day": 5,
		"notes": "corner unit"
	}`
	camel := `{
		"propertyId": "p1",
		"tenantId": "t1",
		"startDate": "2024-07-01",
		"endDate": "2025-06-30",
		"rentCents": 150000,
		"depositCents": 150000,
		"paymentDueDay": 5,
		"notes": "corner unit"
	}`

	var fromSnake, fromCamel CreateLeaseRequest
	require.NoError(t, Decode(strings.NewReader(snake), &fromSnake))
	require.NoError(t, Decode(strings.NewReader(camel), &fromCamel))

	assert.Equal(t, fromSnake, fromCamel)
	assert.Equal(t, model.NewDate(2025, 6, 30), fromCamel.EndDate)
	assert.Equal(t, int64(150000), fromCamel.RentCents)
	assert.Equal(t, 5, fromCamel.PaymentDueDay)
}

func TestDecode_SnakeCaseWinsOverCamelTwin(t *testing.T) {
	var req PostMessageRequest
	require.NoError(t, Decode(strings.NewReader(`{"Body":"camel","body":"snake"}`), &req))
	assert.Equal(t, "snake", req.Body)
}

func TestDecode_NestedKeysNormalized(t *testing.T) {
	got := NormalizeKeys(map[string]any{
		"outerKey": []any{map[string]any{"innerKey": 1}},
	})
	want := map[string]any{
		"outer_key": []any{map[string]any{"inner_key": 1}},
	}
	assert.Equal(t, want, got)
}

func TestDecode_Errors(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		var req LoginRequest
		err := Decode(strings.NewReader(`email=a`), &req)
		assert.True(t, errors.Is(err, ErrInvalidJSON))
	})

	t.Run("not an object", func(t *testing.T) {
		var req LoginRequest
		err := Decode(strings.NewReader(`"hello"`), &req)
		assert.True(t, errors.Is(err, ErrInvalidJSON))
	})

	t.Run("validation", func(t *testing.T) {
		var req RegisterRequest
		err := Decode(strings.NewReader(`{"email":"nope","password":"short","firstName":"Ada","role":"admin"}`), &req)

		var fields FieldErrors
		require.True(t, errors.As(err, &fields))
		assert.Equal(t, "must be a valid email address", fields["email"])
		assert.Equal(t, "must be at least 8 characters", fields["password"])
		assert.Equal(t, "is required", fields["last_name"])
		assert.Equal(t, "must be one of: landlord, tenant", fields["role"])
		assert.NotContains(t, fields, "first_name")
	})

	t.Run("type mismatch names the field", func(t *testing.T) {
		var req RecordPaymentRequest
		err := Decode(strings.NewReader(`{"leaseId":"l1","amountCents":true}`), &req)

		var fields FieldErrors
		require.True(t, errors.As(err, &fields))
		assert.Equal(t, "must be an integer", fields["amount_cents"])
	})

	t.Run("optional pointers skip validation when absent", func(t *testing.T) {
		var req PropertyRequest
		require.NoError(t, Decode(strings.NewReader(`{"name":"Maple Court"}`), &req))
		require.NotNil(t, req.Name)
		assert.Nil(t, req.Bedrooms)
	})

	t.Run("negative pointer value rejected", func(t *testing.T) {
		var req PropertyRequest
		err := Decode(strings.NewReader(`{"bedrooms":-1}`), &req)

		var fields FieldErrors
		require.True(t, errors.As(err, &fields))
		assert.Equal(t, "must be at least 0", fields["bedrooms"])
	})
}

func TestNewList(t *testing.T) {
	list := NewList[int](nil, "")
	assert.NotNil(t, list.Data)
	assert.False(t, list.Pagination.HasMore)

	list = NewList([]int{1, 2}, "next")
	assert.True(t, list.Pagination.HasMore)
	assert.Equal(t, "next", list.Pagination.NextCursor)
}
