package workcontext

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/tax"
	"go.uber.org/zap"
)

const (
	taxDisplayKeyPrefix  = "workctx:taxdisplay:"
	taxDisplayKeyPattern = "workctx:taxdisplay:*"
	taxDisplayCacheTTL   = time.Hour
)

// TaxResolver resolves the tax display type for a customer on a store,
// caching the role-derived part per (role set, store).
type TaxResolver struct {
	settings SettingsProvider
	cache    ContextCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTaxResolver creates a new tax display resolver. A zero cacheTTL uses
// the default of one hour.
func NewTaxResolver(settings SettingsProvider, cache ContextCache, cacheTTL time.Duration, logger *zap.Logger) *TaxResolver {
	if cacheTTL == 0 {
		cacheTTL = taxDisplayCacheTTL
	}
	return &TaxResolver{
		settings: settings,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ResolveTaxDisplayType resolves the display type in priority order:
// explicit customer choice (when self-selection is allowed), EU VAT
// exemption, then the cached role-set lookup with the deployment default
// as final fallback.
func (s *TaxResolver) ResolveTaxDisplayType(ctx context.Context, c *customer.Customer, storeID uuid.UUID) (tax.DisplayType, error) {
	ts, err := s.settings.TaxSettings(ctx)
	if err != nil {
		return tax.DisplayIncludingTax, err
	}

	if ts.AllowCustomerSelection {
		if v, ok := c.GetAttributeInt(customer.AttrTaxDisplayTypeID); ok {
			dt := tax.DisplayType(v)
			if dt.Valid() {
				return dt, nil
			}
		}
	}

	if ts.EUVatEnabled && c.GetAttributeBool(customer.AttrVatExempt) {
		return tax.DisplayExcludingTax, nil
	}

	key := taxDisplayCacheKey(c, storeID)
	v, err := s.cache.GetOrCompute(ctx, key, s.cacheTTL, func(ctx context.Context) (any, error) {
		return int(s.roleDisplayType(c, ts.DefaultDisplayType)), nil
	})
	if err != nil {
		return tax.DisplayIncludingTax, err
	}

	return decodeDisplayType(v, ts.DefaultDisplayType), nil
}

// InvalidateRoleCache drops every cached role-derived display type. Called
// when a customer role is modified or the deployment default changes.
func (s *TaxResolver) InvalidateRoleCache(ctx context.Context) error {
	s.logger.Debug("Invalidating tax display cache")
	return s.cache.InvalidateByPattern(ctx, taxDisplayKeyPattern)
}

// roleDisplayType picks the override from the role with the numerically
// highest display type, or the deployment default when no role declares one.
func (s *TaxResolver) roleDisplayType(c *customer.Customer, fallback tax.DisplayType) tax.DisplayType {
	var best *tax.DisplayType
	for _, r := range c.Roles {
		if !r.Active || r.TaxDisplayType == nil {
			continue
		}
		if best == nil || *r.TaxDisplayType > *best {
			best = r.TaxDisplayType
		}
	}
	if best != nil {
		return *best
	}
	return fallback
}

// taxDisplayCacheKey keys the cache by the sorted set of role ids plus the
// store id, so equal role sets share one entry.
func taxDisplayCacheKey(c *customer.Customer, storeID uuid.UUID) string {
	ids := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		if r.Active {
			ids = append(ids, r.ID.String())
		}
	}
	sort.Strings(ids)
	return fmt.Sprintf("%s%s:%s", taxDisplayKeyPrefix, strings.Join(ids, ","), storeID)
}

// decodeDisplayType tolerates the numeric representations cache backends
// hand back (native int in-process, JSON number cross-process).
func decodeDisplayType(v any, fallback tax.DisplayType) tax.DisplayType {
	switch n := v.(type) {
	case int:
		return tax.DisplayType(n)
	case float64:
		return tax.DisplayType(int(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return tax.DisplayType(i)
		}
	}
	return fallback
}
