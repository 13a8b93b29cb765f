package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryVerdictCache_GetOrCompute(t *testing.T) {
	c := NewInMemoryVerdictCache()
	defer c.Close()

	var computed int32
	compute := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&computed, 1)
		return 42, nil
	}

	v, err := c.GetOrCompute(context.Background(), "k1", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrCompute(context.Background(), "k1", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&computed))
}

func TestInMemoryVerdictCache_ComputeErrorNotCached(t *testing.T) {
	c := NewInMemoryVerdictCache()
	defer c.Close()

	_, err := c.GetOrCompute(context.Background(), "k1", time.Minute, func(ctx context.Context) (any, error) {
		return nil, errors.New("backend down")
	})
	require.Error(t, err)

	v, err := c.GetOrCompute(context.Background(), "k1", time.Minute, func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestInMemoryVerdictCache_TTLExpiry(t *testing.T) {
	c := NewInMemoryVerdictCache()
	defer c.Close()

	var computed int32
	compute := func(ctx context.Context) (any, error) {
		return atomic.AddInt32(&computed, 1), nil
	}

	_, err := c.GetOrCompute(context.Background(), "k1", 10*time.Millisecond, compute)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	v, err := c.GetOrCompute(context.Background(), "k1", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
}

func TestInMemoryVerdictCache_InvalidateByPattern(t *testing.T) {
	c := NewInMemoryVerdictCache()
	defer c.Close()

	c.set("workctx:taxdisplay:a", 1, time.Minute)
	c.set("workctx:taxdisplay:b", 2, time.Minute)
	c.set("workctx:other:a", 3, time.Minute)

	require.NoError(t, c.InvalidateByPattern(context.Background(), "workctx:taxdisplay:*"))

	_, ok := c.get("workctx:taxdisplay:a")
	assert.False(t, ok)
	_, ok = c.get("workctx:taxdisplay:b")
	assert.False(t, ok)
	_, ok = c.get("workctx:other:a")
	assert.True(t, ok)
}

func TestInMemoryVerdictCache_ConcurrentMissesComputeOnce(t *testing.T) {
	c := NewInMemoryVerdictCache()
	defer c.Close()

	var computed int32
	compute := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&computed, 1)
		time.Sleep(5 * time.Millisecond)
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrCompute(context.Background(), "hot", time.Minute, compute)
			assert.NoError(t, err)
			assert.Equal(t, "v", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&computed))
}
