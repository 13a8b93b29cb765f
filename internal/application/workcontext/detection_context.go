package workcontext

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
)

// DetectionContext is the per-request scratch pad threaded through the
// detector chain. It memoizes overload verdicts and tracks the lock handle
// acquired by fingerprint detection so it can be released exactly once.
// It is never shared across requests.
type DetectionContext struct {
	Request *Request

	// Populated progressively by detectors
	Fingerprint   string
	CustomerGUID  uuid.UUID
	Authenticated *customer.Customer

	denyGuest *bool
	denyBot   *bool

	lock LockHandle
}

// NewDetectionContext creates a detection context for one request
func NewDetectionContext(req *Request) *DetectionContext {
	return &DetectionContext{Request: req}
}

// GuestDenied returns the overload policy's guest-denial verdict, computed
// at most once for the lifetime of this context.
func (dc *DetectionContext) GuestDenied(ctx context.Context, policy OverloadPolicy, c *customer.Customer) bool {
	if dc.denyGuest == nil {
		v := policy.DenyGuest(ctx, dc.Request, c)
		dc.denyGuest = &v
	}
	return *dc.denyGuest
}

// BotDenied returns the overload policy's bot-denial verdict, computed at
// most once for the lifetime of this context.
func (dc *DetectionContext) BotDenied(ctx context.Context, policy OverloadPolicy) bool {
	if dc.denyBot == nil {
		v := policy.DenyBot(ctx, dc.Request, dc.Request.UserAgent)
		dc.denyBot = &v
	}
	return *dc.denyBot
}

// HoldLock records a lock handle to be released when resolution finishes.
func (dc *DetectionContext) HoldLock(h LockHandle) {
	dc.lock = h
}

// ReleaseLock releases the held lock, if any. Safe to call when no lock was
// acquired; the handle is cleared so a second call is a no-op.
func (dc *DetectionContext) ReleaseLock(ctx context.Context) error {
	if dc.lock == nil {
		return nil
	}
	h := dc.lock
	dc.lock = nil
	return h.Release(ctx)
}
