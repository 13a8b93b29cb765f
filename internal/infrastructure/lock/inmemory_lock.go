package lock

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/application/workcontext"
)

// InMemoryLockProvider provides per-key mutual exclusion within a single
// process. Suitable for single-instance deployments and tests. Slots are
// reference counted and dropped once the last holder or waiter is gone,
// so the map does not grow with the number of distinct fingerprints seen.
type InMemoryLockProvider struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

// NewInMemoryLockProvider creates a new in-process lock provider
func NewInMemoryLockProvider() *InMemoryLockProvider {
	return &InMemoryLockProvider{slots: make(map[string]*lockSlot)}
}

// TryAcquire attempts to take the named lock within the timeout. A nil
// handle with a nil error means the lock could not be acquired in time.
func (p *InMemoryLockProvider) TryAcquire(ctx context.Context, key string, timeout time.Duration) (workcontext.LockHandle, error) {
	p.mu.Lock()
	slot, ok := p.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		p.slots[key] = slot
	}
	slot.refs++
	p.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
		return &inMemoryLockHandle{p: p, key: key, slot: slot}, nil
	case <-timer.C:
		p.unref(key, slot)
		return nil, nil
	case <-ctx.Done():
		p.unref(key, slot)
		return nil, ctx.Err()
	}
}

// unref drops one interest in the slot, evicting it when nobody holds or
// waits on it anymore.
func (p *InMemoryLockProvider) unref(key string, slot *lockSlot) {
	p.mu.Lock()
	slot.refs--
	if slot.refs == 0 && p.slots[key] == slot {
		delete(p.slots, key)
	}
	p.mu.Unlock()
}

type inMemoryLockHandle struct {
	p    *InMemoryLockProvider
	key  string
	slot *lockSlot
	once sync.Once
}

// Release frees the lock. Safe to call more than once.
func (h *inMemoryLockHandle) Release(ctx context.Context) error {
	h.once.Do(func() {
		<-h.slot.ch
		h.p.unref(h.key, h.slot)
	})
	return nil
}

var _ workcontext.LockProvider = (*InMemoryLockProvider)(nil)
