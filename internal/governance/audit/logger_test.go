package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/repository"
	"landledger.io/registry/internal/repository/memory"
)

func TestLogger_Actor(t *testing.T) {
	tests := []struct {
		name         string
		defaultActor string
		actor        string
		want         string
	}{
		{"explicit actor", "", "registrar-1", "registrar-1"},
		{"blank actor falls back", "", "", "Admin"},
		{"whitespace actor falls back", "", "   ", "Admin"},
		{"configured default", "Clerk", "", "Clerk"},
		{"trimmed", "", "  alice ", "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewLogger(tt.defaultActor).Actor(tt.actor))
		})
	}
}

func TestLogger_LogActionAndList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewLogger("").WithClock(func() time.Time { return ts })

	entry, err := l.LogAction(ctx, store, domain.AuditActionCreate, "", "Registered land: L001")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(entry.ID, "audit-"))
	assert.Equal(t, "Admin", entry.Actor)
	assert.Equal(t, ts, entry.Timestamp)

	ts = ts.Add(time.Minute)
	_, err = l.LogAction(ctx, store, domain.AuditActionSearch, "alice", "Searched deeds: D001")
	require.NoError(t, err)

	entries, err := l.List(ctx, store, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionSearch, entries[0].Action)
	assert.Equal(t, "alice", entries[0].Actor)

	entries, err = l.List(ctx, store, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLogger_RollsBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	l := NewLogger("")
	boom := errors.New("boom")

	err := store.InTx(ctx, func(q repository.Querier) error {
		if _, err := l.LogAction(ctx, q, domain.AuditActionDelete, "", "Deleted deed D001"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := l.List(ctx, store, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateAuditID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateAuditID()
		require.False(t, seen[id])
		seen[id] = true
	}
}
