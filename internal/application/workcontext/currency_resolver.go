package workcontext

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/store"
	"go.uber.org/zap"
)

// CurrencyResolver resolves the published currency a request is served in,
// as a deterministic waterfall of fallbacks.
type CurrencyResolver struct {
	currencies directory.CurrencyRepository
	geo        GeoResolver
	settings   SettingsProvider
	directory  CustomerDirectory
	logger     *zap.Logger
}

// NewCurrencyResolver creates a new currency resolution waterfall
func NewCurrencyResolver(
	currencies directory.CurrencyRepository,
	geo GeoResolver,
	settings SettingsProvider,
	dir CustomerDirectory,
	logger *zap.Logger,
) *CurrencyResolver {
	return &CurrencyResolver{
		currencies: currencies,
		geo:        geo,
		settings:   settings,
		directory:  dir,
		logger:     logger,
	}
}

// ResolveWorkingCurrency resolves the working currency for the customer on
// the given store. It never fails for a missing currency in well-formed
// deployments and self-heals when no published currency exists at all.
func (s *CurrencyResolver) ResolveWorkingCurrency(ctx context.Context, req *Request, c *customer.Customer, st *store.Store, forAdminArea bool) (*directory.Currency, error) {
	all, err := s.currencies.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// Admin area always works in the deployment's primary currency.
	if forAdminArea {
		if primary := s.primaryCurrency(ctx, all); primary != nil {
			return primary, nil
		}
	}

	storeCurrencies := currenciesForStore(all, st.ID)

	// Stored preference, unless the store leaves no choice. Bots never
	// consult a personal preference.
	if !c.IsSearchEngine() {
		preferred := s.storedPreference(ctx, c, all, st.ID)
		if len(storeCurrencies) == 1 {
			return storeCurrencies[0], nil
		}
		if preferred != nil {
			return preferred, nil
		}
	} else if len(storeCurrencies) == 1 {
		return storeCurrencies[0], nil
	}

	// Country default for the caller's address.
	if cur := s.currencyByGeo(ctx, req.IP, all); cur != nil {
		return cur, nil
	}

	// Currency whose domain ending matches the request host.
	for _, cur := range storeCurrencies {
		if cur.MatchesHost(req.Host) {
			return cur, nil
		}
	}

	// Store default, then deployment primary.
	if st.DefaultCurrencyID != nil {
		if cur := findCurrency(all, *st.DefaultCurrencyID); verifyCurrency(cur) {
			return cur, nil
		}
	}
	if primary := s.primaryCurrency(ctx, all); verifyCurrency(primary) {
		return primary, nil
	}

	// First published currency for the store, then anywhere.
	if len(storeCurrencies) > 0 {
		return storeCurrencies[0], nil
	}
	for _, cur := range all {
		if cur.Published {
			return cur, nil
		}
	}

	// Bootstrap gap: no published currency exists. Promote the first one
	// found and persist the correction.
	if len(all) > 0 {
		cur := all[0]
		cur.Publish()
		if err := s.currencies.Update(ctx, cur); err != nil {
			s.logger.Error("Failed to persist currency self-heal",
				zap.String("currency_code", cur.CurrencyCode),
				zap.Error(err))
		} else {
			s.logger.Warn("No published currency found, promoted one",
				zap.String("currency_code", cur.CurrencyCode))
		}
		return cur, nil
	}

	return nil, shared.NewDomainError("NO_CURRENCY", "No currency is configured for this deployment")
}

// SetWorkingCurrency persists the customer's currency preference.
func (s *CurrencyResolver) SetWorkingCurrency(ctx context.Context, c *customer.Customer, currencyID uuid.UUID) error {
	cur, err := s.currencies.FindByID(ctx, currencyID)
	if err != nil {
		return err
	}
	if !verifyCurrency(cur) {
		return shared.NewDomainError("CURRENCY_NOT_PUBLISHED", "Currency is not published")
	}

	c.SetAttribute(customer.AttrCurrencyID, currencyID.String())
	return s.directory.SaveAttribute(ctx, c.ID, customer.AttrCurrencyID, currencyID.String())
}

// storedPreference returns the customer's valid stored currency, clearing a
// stored preference that points at an unpublished currency.
func (s *CurrencyResolver) storedPreference(ctx context.Context, c *customer.Customer, all []*directory.Currency, storeID uuid.UUID) *directory.Currency {
	prefID, ok := c.GetAttributeUUID(customer.AttrCurrencyID)
	if !ok {
		return nil
	}

	cur := findCurrency(all, prefID)
	if cur == nil || !verifyCurrency(cur) {
		// Stale preference; clear it so the record self-corrects.
		c.RemoveAttribute(customer.AttrCurrencyID)
		if err := s.directory.DeleteAttribute(ctx, c.ID, customer.AttrCurrencyID); err != nil {
			s.logger.Warn("Failed to clear stale currency preference",
				zap.String("customer_guid", c.CustomerGUID.String()),
				zap.Error(err))
		}
		return nil
	}
	if !cur.AvailableForStore(storeID) {
		return nil
	}
	return cur
}

// currencyByGeo maps the caller's address to its country's default
// currency, when that currency is published.
func (s *CurrencyResolver) currencyByGeo(ctx context.Context, ip string, all []*directory.Currency) *directory.Currency {
	if ip == "" {
		return nil
	}
	country, err := s.geo.LookupCountry(ctx, ip)
	if err != nil || country == nil || country.DefaultCurrencyID == nil {
		return nil
	}
	cur := findCurrency(all, *country.DefaultCurrencyID)
	if cur != nil && cur.Published {
		return cur
	}
	return nil
}

// primaryCurrency returns the deployment's primary currency, or nil.
func (s *CurrencyResolver) primaryCurrency(ctx context.Context, all []*directory.Currency) *directory.Currency {
	cs, err := s.settings.CurrencySettings(ctx)
	if err != nil || cs.PrimaryCurrencyID == uuid.Nil {
		return nil
	}
	return findCurrency(all, cs.PrimaryCurrencyID)
}

// verifyCurrency gates waterfall steps on the published flag.
func verifyCurrency(c *directory.Currency) bool {
	return c != nil && c.Published
}

func findCurrency(all []*directory.Currency, id uuid.UUID) *directory.Currency {
	for _, c := range all {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func currenciesForStore(all []*directory.Currency, storeID uuid.UUID) []*directory.Currency {
	out := make([]*directory.Currency, 0, len(all))
	for _, c := range all {
		if c.Published && c.AvailableForStore(storeID) {
			out = append(out, c)
		}
	}
	return out
}
