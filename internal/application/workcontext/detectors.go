package workcontext

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// detectorFunc is one probe of the detector chain. It may populate the
// detection context and returns a customer or nil.
type detectorFunc func(ctx context.Context, dc *DetectionContext) (*customer.Customer, error)

// chain returns the ordered detector list. Order encodes priority.
func (s *CustomerResolver) chain() []detectorFunc {
	return []detectorFunc{
		s.detectBackgroundTask,
		s.detectDocumentRenderer,
		s.detectAuthenticated,
		s.detectGuestByCookie,
		s.detectSearchEngine,
		s.detectWebhook,
		s.detectByFingerprint,
	}
}

// detectBackgroundTask recognizes the task-scheduler caller by its token.
func (s *CustomerResolver) detectBackgroundTask(ctx context.Context, dc *DetectionContext) (*customer.Customer, error) {
	if !tokenMatches(dc.Request.SchedulerToken, s.config.SchedulerToken) {
		return nil, nil
	}
	return s.findSystemAccount(ctx, customer.SystemNameBackgroundTask)
}

// detectDocumentRenderer recognizes the automated document-rendering caller.
func (s *CustomerResolver) detectDocumentRenderer(ctx context.Context, dc *DetectionContext) (*customer.Customer, error) {
	if !tokenMatches(dc.Request.RendererToken, s.config.RendererToken) {
		return nil, nil
	}
	return s.findSystemAccount(ctx, customer.SystemNameDocumentRenderer)
}

// detectAuthenticated looks up the authenticated principal, remembering it
// on the context for the post-detection decision tree.
func (s *CustomerResolver) detectAuthenticated(ctx context.Context, dc *DetectionContext) (*customer.Customer, error) {
	c, err := s.directory.Authenticated(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	dc.Authenticated = c
	return c, nil
}

// detectGuestByCookie loads a returning guest by the GUID stored in the
// visitor cookie. A record that has since become registered is never
// treated as a guest and detection falls through.
func (s *CustomerResolver) detectGuestByCookie(ctx context.Context, dc *DetectionContext) (*customer.Customer, error) {
	if dc.Request.VisitorToken == "" {
		return nil, nil
	}
	guid, err := uuid.Parse(dc.Request.VisitorToken)
	if err != nil {
		return nil, nil
	}
	dc.CustomerGUID = guid

	c, err := s.directory.FindByGUID(ctx, guid)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if c == nil || c.IsRegistered() {
		return nil, nil
	}
	return c, nil
}

// detectSearchEngine maps crawler user agents onto the bot system account.
func (s *CustomerResolver) detectSearchEngine(ctx context.Context, dc *DetectionContext) (*customer.Customer, error) {
	if !s.agents.IsBot(dc.Request.UserAgent) {
		return nil, nil
	}
	return s.findSystemAccount(ctx, customer.SystemNameSearchEngine)
}

// detectWebhook recognizes webhook callers via endpoint metadata, or via an
// unauthenticated request on a webhook-prefixed path. The webhook account
// is auto-created on first sight.
func (s *CustomerResolver) detectWebhook(ctx context.Context, dc *DetectionContext) (*customer.Customer, error) {
	isWebhook := dc.Request.WebhookRoute
	if !isWebhook && s.config.WebhookPathPrefix != "" && dc.Authenticated == nil {
		isWebhook = strings.HasPrefix(dc.Request.Path, s.config.WebhookPathPrefix)
	}
	if !isWebhook {
		return nil, nil
	}
	return s.directory.EnsureSystemAccount(ctx, customer.SystemNameWebhook)
}

// detectByFingerprint recognizes a returning anonymous visitor by the
// fingerprint derived from IP and user agent. On a miss it takes a named
// lock and retries once, closing the race where two concurrent requests
// from the same client would both create a guest. The lock is best-effort:
// an acquisition timeout proceeds without it.
func (s *CustomerResolver) detectByFingerprint(ctx context.Context, dc *DetectionContext) (*customer.Customer, error) {
	req := dc.Request
	if req.IP == "" && req.UserAgent == "" {
		return nil, nil
	}
	dc.Fingerprint = req.Fingerprint()

	c, err := s.findByFingerprint(ctx, dc.Fingerprint)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	handle, err := s.locks.TryAcquire(ctx, "workctx:guest:"+dc.Fingerprint, s.config.LockTimeout)
	if err != nil {
		return nil, err
	}
	if handle != nil {
		dc.HoldLock(handle)
	} else {
		// Lock timed out; proceed unlocked and accept the residual
		// duplicate risk rather than blocking the request.
		s.logger.Warn("Fingerprint lock acquisition timed out",
			zap.String("fingerprint", dc.Fingerprint))
	}

	// Another concurrent request may have just created the record.
	return s.findByFingerprint(ctx, dc.Fingerprint)
}

func (s *CustomerResolver) findByFingerprint(ctx context.Context, fingerprint string) (*customer.Customer, error) {
	c, err := s.directory.FindByFingerprint(ctx, fingerprint, s.config.FingerprintWindow)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (s *CustomerResolver) findSystemAccount(ctx context.Context, systemName string) (*customer.Customer, error) {
	c, err := s.directory.FindBySystemName(ctx, systemName)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func tokenMatches(presented, configured string) bool {
	if presented == "" || configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) == 1
}
