package workcontext

import (
	"context"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/settings"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CacheInvalidationHandler drops the role-derived tax display cache when a
// customer role is saved or the deployment default display type changes.
type CacheInvalidationHandler struct {
	taxResolver *TaxResolver
	logger      *zap.Logger
}

// NewCacheInvalidationHandler creates a new invalidation handler
func NewCacheInvalidationHandler(taxResolver *TaxResolver, logger *zap.Logger) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{
		taxResolver: taxResolver,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *CacheInvalidationHandler) EventTypes() []string {
	return []string{customer.EventRoleSaved, settings.EventSettingChanged}
}

// Handle processes a domain event
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *customer.RoleSavedEvent:
		return h.taxResolver.InvalidateRoleCache(ctx)
	case *settings.SettingChangedEvent:
		if e.Name == settings.NameTaxDefaultDisplayType {
			return h.taxResolver.InvalidateRoleCache(ctx)
		}
	}
	return nil
}
