package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landledger.io/registry/internal/repository"
	"landledger.io/registry/internal/repository/repositorytest"
)

func TestStore(t *testing.T) {
	repositorytest.Run(t, func(*testing.T) repository.Store { return NewStore() })
}

func TestStore_CancelledContextRejected(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.InsertLand(ctx, repositorytest.Land("L001"))
	require.ErrorIs(t, err, context.Canceled)

	lands, err := s.ListLands(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lands)
}

func TestStore_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.InsertLand(ctx, repositorytest.Land("L001")))

	lands, err := s.ListLands(ctx)
	require.NoError(t, err)
	lands[0].District = "Kandy"

	land, err := s.GetLand(ctx, "L001")
	require.NoError(t, err)
	assert.Equal(t, "Colombo", land.District)
}
