package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPools(t *testing.T, cfg PoolConfig) *Pools {
	t.Helper()
	pools, err := NewPools(context.Background(), cfg)
	require.NoError(t, err)
	return pools
}

func TestNewPools(t *testing.T) {
	pools := newTestPools(t, DefaultPoolConfig())
	defer pools.Shutdown()

	require.NotNil(t, pools.General)
	require.NotNil(t, pools.Integrity)
	assert.Equal(t, 8, pools.Integrity.Cap())
}

func TestPool_Submit(t *testing.T) {
	pools := newTestPools(t, PoolConfig{GeneralPoolSize: 2, IntegrityPoolSize: 2})
	defer pools.Shutdown()

	var executed atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pools.General.Submit(context.Background(), func(context.Context) {
		executed.Store(true)
		wg.Done()
	}))
	wg.Wait()
	assert.True(t, executed.Load())
}

func TestPool_Submit_CancelledContext(t *testing.T) {
	pools := newTestPools(t, DefaultPoolConfig())
	defer pools.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pools.General.Submit(ctx, func(context.Context) {
		t.Error("Task should not execute with cancelled context")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPool_Submit_AfterShutdown(t *testing.T) {
	pools := newTestPools(t, DefaultPoolConfig())
	pools.Shutdown()

	err := pools.General.Submit(context.Background(), func(context.Context) {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPool_Each(t *testing.T) {
	pools := newTestPools(t, PoolConfig{GeneralPoolSize: 1, IntegrityPoolSize: 3})
	defer pools.Shutdown()

	const n = 50
	seen := make([]atomic.Bool, n)
	var count atomic.Int32
	err := pools.Integrity.Each(context.Background(), n, func(_ context.Context, i int) {
		seen[i].Store(true)
		count.Add(1)
	})
	require.NoError(t, err)
	assert.EqualValues(t, n, count.Load())
	for i := range seen {
		assert.True(t, seen[i].Load(), "index %d not visited", i)
	}
}

func TestPool_Each_Cancelled(t *testing.T) {
	pools := newTestPools(t, PoolConfig{GeneralPoolSize: 1, IntegrityPoolSize: 1})
	defer pools.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	var count atomic.Int32
	err := pools.Integrity.Each(ctx, 100, func(context.Context, int) {
		if count.Add(1) == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, count.Load(), int32(100))
}

func TestPools_SubmitDetached(t *testing.T) {
	tests := []struct {
		name     string
		poolName string
	}{
		{"general pool", PoolGeneral},
		{"integrity pool", PoolIntegrity},
		{"default fallback", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pools := newTestPools(t, DefaultPoolConfig())

			var executed atomic.Bool
			var wg sync.WaitGroup
			wg.Add(1)
			require.NoError(t, pools.SubmitDetached(tt.poolName, func(ctx context.Context) {
				executed.Store(ctx.Err() == nil)
				wg.Done()
			}))
			wg.Wait()
			pools.Shutdown()

			assert.True(t, executed.Load())
		})
	}
}

func TestPools_Metrics(t *testing.T) {
	pools := newTestPools(t, PoolConfig{GeneralPoolSize: 10, IntegrityPoolSize: 5})
	defer pools.Shutdown()

	m := pools.Metrics()
	general, ok := m[PoolGeneral].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 10, general["cap"])

	integrity, ok := m[PoolIntegrity].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 5, integrity["cap"])
}
