package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingPurger struct {
	calls atomic.Int64
	err   error
}

func (p *countingPurger) PurgeAbandonedGuests(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	return 0, p.err
}

func TestGuestPurgeScheduler(t *testing.T) {
	t.Run("runs purge passes on the interval", func(t *testing.T) {
		purger := &countingPurger{}
		s := NewGuestPurgeScheduler(purger, 10*time.Millisecond, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		assert.Eventually(t, func() bool {
			return purger.calls.Load() >= 2
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("stop halts the loop", func(t *testing.T) {
		purger := &countingPurger{}
		s := NewGuestPurgeScheduler(purger, 10*time.Millisecond, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Stop(context.Background()))

		settled := purger.calls.Load()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, settled, purger.calls.Load())
	})

	t.Run("start is idempotent", func(t *testing.T) {
		purger := &countingPurger{}
		s := NewGuestPurgeScheduler(purger, time.Hour, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Stop(context.Background()))
	})

	t.Run("purge errors keep the loop alive", func(t *testing.T) {
		purger := &countingPurger{err: errors.New("db down")}
		s := NewGuestPurgeScheduler(purger, 10*time.Millisecond, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		assert.Eventually(t, func() bool {
			return purger.calls.Load() >= 2
		}, time.Second, 5*time.Millisecond)
	})
}
