package workcontext

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/storefront/backend/internal/domain/customer"
	"go.uber.org/zap"
)

// ResolverConfig contains configuration for the customer resolution pipeline
type ResolverConfig struct {
	SchedulerToken    string        // shared secret identifying the task scheduler
	RendererToken     string        // shared secret identifying the document renderer
	WebhookPathPrefix string        // request paths under this prefix are webhook calls
	FingerprintWindow time.Duration // freshness window for fingerprint matches
	LockTimeout       time.Duration // best-effort acquisition timeout for the fingerprint lock
}

// DefaultResolverConfig returns default pipeline configuration
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		WebhookPathPrefix: "/webhooks/",
		FingerprintWindow: 300 * time.Second,
		LockTimeout:       2 * time.Second,
	}
}

// CustomerResolver resolves the identity of the customer behind an inbound
// request by running an ordered detector chain over a per-request
// DetectionContext.
type CustomerResolver struct {
	directory CustomerDirectory
	policy    OverloadPolicy
	locks     LockProvider
	agents    UserAgentInspector
	config    ResolverConfig
	logger    *zap.Logger
}

// NewCustomerResolver creates a new customer resolution pipeline
func NewCustomerResolver(
	directory CustomerDirectory,
	policy OverloadPolicy,
	locks LockProvider,
	agents UserAgentInspector,
	config ResolverConfig,
	logger *zap.Logger,
) *CustomerResolver {
	return &CustomerResolver{
		directory: directory,
		policy:    policy,
		locks:     locks,
		agents:    agents,
		config:    config,
		logger:    logger,
	}
}

// ResolveCurrentCustomer resolves the working customer for the request and,
// when the authenticated customer impersonates another account, the
// impersonator. On success the returned customer is never nil; overload
// rejection surfaces as *AdmissionDeniedError.
func (s *CustomerResolver) ResolveCurrentCustomer(ctx context.Context, req *Request) (working, impersonator *customer.Customer, err error) {
	dc := NewDetectionContext(req)
	defer func() {
		// The transport may have canceled the request mid-flight; the
		// lock is released regardless so it never outlives resolution.
		if rerr := dc.ReleaseLock(context.WithoutCancel(ctx)); rerr != nil {
			s.logger.Warn("Failed to release fingerprint lock",
				zap.String("fingerprint", dc.Fingerprint),
				zap.Error(rerr))
		}
	}()

	// Ordered detector chain. The loop stops at the first usable customer;
	// a non-usable hit is remembered as the last candidate and detection
	// continues on the same context.
	var candidate *customer.Customer
	for _, detect := range s.chain() {
		c, derr := detect(ctx, dc)
		if derr != nil {
			s.logger.Debug("Detector lookup failed", zap.Error(derr))
			continue
		}
		if c == nil {
			continue
		}
		candidate = c
		if c.IsUsable() {
			break
		}
	}

	return s.decide(ctx, dc, candidate)
}

// decide applies the post-detection decision tree, in order: authenticated
// principal (with impersonation), bot denial, guest denial, guest creation.
func (s *CustomerResolver) decide(ctx context.Context, dc *DetectionContext, candidate *customer.Customer) (*customer.Customer, *customer.Customer, error) {
	req := dc.Request

	switch {
	case candidate != nil && dc.Authenticated != nil:
		auth := dc.Authenticated
		if target := s.impersonationTarget(ctx, auth); target != nil {
			return target, auth, nil
		}
		return auth, nil, nil

	case candidate != nil && candidate.IsSearchEngine():
		if dc.BotDenied(ctx, s.policy) {
			s.logger.Info("Bot traffic shed by overload policy",
				zap.String("user_agent", req.UserAgent))
			return nil, nil, NewTooManyRequests("bot traffic is temporarily not accepted")
		}

	case candidate != nil && candidate.IsGuest():
		if dc.GuestDenied(ctx, s.policy, candidate) {
			s.logger.Info("Guest traffic shed by overload policy",
				zap.String("customer_guid", candidate.CustomerGUID.String()))
			return nil, nil, NewTooManyRequests("guest traffic is temporarily not accepted")
		}
	}

	// Guest creation gate. A registered record reached without
	// authentication cannot be trusted and is never treated as a guest.
	if candidate == nil || !candidate.IsUsable() || (!candidate.IsSystemAccount && candidate.IsRegistered()) {
		return s.createGuest(ctx, dc)
	}

	if candidate.IsGuest() && req.VisitorToken == "" && req.SetVisitorCookie != nil {
		req.SetVisitorCookie(candidate.CustomerGUID.String())
	}

	return candidate, nil, nil
}

// impersonationTarget returns the still-valid impersonation target named by
// the authenticated customer's attributes, or nil. A stale target is
// ignored rather than failing resolution.
func (s *CustomerResolver) impersonationTarget(ctx context.Context, auth *customer.Customer) *customer.Customer {
	targetGUID, ok := auth.GetAttributeUUID(customer.AttrImpersonatedCustomerID)
	if !ok {
		return nil
	}

	target, err := s.directory.FindByGUID(ctx, targetGUID)
	if err != nil || target == nil {
		s.logger.Debug("Impersonation target not found, ignoring",
			zap.String("target_guid", targetGUID.String()))
		return nil
	}
	if target.Deleted || !target.Active {
		s.logger.Debug("Impersonation target no longer valid, ignoring",
			zap.String("target_guid", targetGUID.String()))
		return nil
	}
	return target
}

// createGuest provisions a new guest record after consulting the stricter
// new-guest overload gate, seeding best-effort telemetry.
func (s *CustomerResolver) createGuest(ctx context.Context, dc *DetectionContext) (*customer.Customer, *customer.Customer, error) {
	req := dc.Request

	if s.policy.ForbidNewGuest(ctx, req) {
		s.logger.Info("New guest creation forbidden by overload policy",
			zap.String("ip", req.IP))
		return nil, nil, NewGuestCreationForbidden("new guest accounts are temporarily not accepted")
	}
	if dc.GuestDenied(ctx, s.policy, nil) {
		return nil, nil, NewTooManyRequests("guest traffic is temporarily not accepted")
	}

	if dc.Fingerprint == "" {
		dc.Fingerprint = req.Fingerprint()
	}

	created, err := s.directory.CreateGuest(ctx, dc.Fingerprint, func(c *customer.Customer) {
		c.RecordIPAddress(req.IP)
		c.SetAttribute(customer.AttrUserAgent, clip(req.UserAgent, customer.MaxUserAgentLength))
		if label := s.agents.DeviceLabel(req.UserAgent); label != "" {
			c.SetAttribute(customer.AttrDeviceLabel, clip(label, customer.MaxDeviceLabelLength))
		}
		if u := SanitizeVisitedURL(req.RequestedURL, customer.MaxLastVisitedPageLength); u != "" {
			c.SetAttribute(customer.AttrLastVisitedPage, u)
		}
	})
	if err != nil {
		return nil, nil, err
	}

	if req.SetVisitorCookie != nil {
		req.SetVisitorCookie(created.CustomerGUID.String())
	}

	s.logger.Debug("Created new guest customer",
		zap.String("customer_guid", created.CustomerGUID.String()),
		zap.String("fingerprint", dc.Fingerprint))

	return created, nil, nil
}

// clip truncates s to at most max bytes, backing off to a rune boundary
// so a multi-byte sequence is never split.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
