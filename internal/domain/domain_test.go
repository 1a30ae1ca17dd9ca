package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLand_Extent(t *testing.T) {
	tests := []struct {
		name string
		land Land
		want string
	}{
		{"whole number", Land{Area: 10, AreaUnit: "Perches"}, "10 Perches"},
		{"fraction", Land{Area: 2.5, AreaUnit: "Acres"}, "2.5 Acres"},
		{"no unit", Land{Area: 7}, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.land.Extent())
		})
	}
}

func TestDeedStatus(t *testing.T) {
	assert.True(t, DeedStatusActive.Valid())
	assert.True(t, DeedStatusTransferred.Valid())
	assert.False(t, DeedStatus("PENDING").Valid())

	assert.True(t, Deed{Status: DeedStatusActive}.IsActive())
	assert.False(t, Deed{Status: DeedStatusTransferred}.IsActive())
}

func TestDeed_JSONOmitsEmptyPreviousSnapshot(t *testing.T) {
	data, err := json.Marshal(Deed{DeedNumber: "D001", Status: DeedStatusActive})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deedNumber":"D001"`)
	assert.NotContains(t, string(data), "previousDeedNumber")
	assert.NotContains(t, string(data), "previousRegistrationDate")
}

func TestTransferPayload_ToJSON(t *testing.T) {
	payload := TransferPayload{
		OldDeedNumber: "D001",
		NewDeedNumber: "D001-01",
		LandNumber:    "L001",
		FromOwnerNIC:  "901234567V",
		ToOwnerNIC:    "199012345678",
		BlockNumber:   1002,
		AuditEntry: AuditEntry{
			ID:        "audit-1",
			Timestamp: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC),
			Actor:     "Admin",
			Action:    AuditActionTransfer,
			Details:   "Transferred ownership from deed D001 to D001-01",
		},
	}

	data, err := payload.ToJSON()
	require.NoError(t, err)

	var decoded TransferPayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent(t *testing.T) {
	evt := NewEvent(EventDeedRegistered, "deed", "D001", "Admin", []byte(`{}`))
	assert.True(t, strings.HasPrefix(evt.EventID, "evt-"))
	assert.Equal(t, EventDeedRegistered, evt.EventType)
	assert.Equal(t, "D001", evt.AggregateID)
	assert.False(t, evt.CreatedAt.IsZero())

	other := NewEvent(EventDeedRegistered, "deed", "D001", "Admin", nil)
	assert.NotEqual(t, evt.EventID, other.EventID)
}

func TestEventDispatcher_Dispatch(t *testing.T) {
	d := NewEventDispatcher()
	var got []string

	d.Register(EventDeedTransferred, func(_ context.Context, e *DomainEvent) error {
		got = append(got, "first:"+e.AggregateID)
		return errors.New("boom")
	})
	d.Register(EventDeedTransferred, func(_ context.Context, e *DomainEvent) error {
		got = append(got, "second:"+e.AggregateID)
		return nil
	})

	err := d.Dispatch(context.Background(), NewEvent(EventDeedTransferred, "deed", "D002", "Admin", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEED_TRANSFERRED")
	assert.Equal(t, []string{"first:D002", "second:D002"}, got)
}

func TestEventDispatcher_NoHandlers(t *testing.T) {
	d := NewEventDispatcher()
	assert.NoError(t, d.Dispatch(context.Background(), NewEvent(EventDeedDeleted, "deed", "D1", "Admin", nil)))
}

func TestEventDispatcher_RegisterAll(t *testing.T) {
	d := NewEventDispatcher()
	count := 0
	d.RegisterAll(func(context.Context, *DomainEvent) error {
		count++
		return nil
	})

	for _, et := range AllEventTypes {
		require.NoError(t, d.Dispatch(context.Background(), NewEvent(et, "deed", "D1", "Admin", nil)))
	}
	assert.Equal(t, len(AllEventTypes), count)
}
