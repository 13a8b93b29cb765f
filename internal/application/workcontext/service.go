package workcontext

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/store"
	"github.com/storefront/backend/internal/domain/tax"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// WorkContext is the fully resolved view of one inbound request: who is
// asking, on which store, in which currency and language, and how prices
// display tax.
type WorkContext struct {
	Customer     *customer.Customer
	Impersonator *customer.Customer // nil unless the customer impersonates another account
	Store        *store.Store
	Currency     *directory.Currency
	Language     *directory.Language // nil when no language is configured
	TaxDisplay   tax.DisplayType
}

// Service composes the individual resolvers into one work-context
// resolution per request.
type Service struct {
	customers  *CustomerResolver
	currencies *CurrencyResolver
	taxes      *TaxResolver
	languages  *LanguageResolver
	stores     store.Repository
	logger     *zap.Logger
}

// NewService creates a new work-context service
func NewService(
	customers *CustomerResolver,
	currencies *CurrencyResolver,
	taxes *TaxResolver,
	languages *LanguageResolver,
	stores store.Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		customers:  customers,
		currencies: currencies,
		taxes:      taxes,
		languages:  languages,
		stores:     stores,
		logger:     logger,
	}
}

// Resolve builds the work context for the request. The only exceptional
// outcome callers must branch on is *AdmissionDeniedError; a language
// resolution failure degrades to a nil language rather than failing the
// whole context.
func (s *Service) Resolve(ctx context.Context, req *Request, forAdminArea bool) (*WorkContext, error) {
	ctx, span := telemetry.StartSpan(ctx, "workcontext.resolve",
		telemetry.WithAttribute(telemetry.SpanAttrStoreHost, req.Host),
	)
	defer span.End()

	working, impersonator, err := s.customers.ResolveCurrentCustomer(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	st, err := s.resolveStore(ctx, req.Host)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	cur, err := s.currencies.ResolveWorkingCurrency(ctx, req, working, st, forAdminArea)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	display, err := s.taxes.ResolveTaxDisplayType(ctx, working, st.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lang, err := s.languages.ResolveWorkingLanguage(ctx, working, st, req.AcceptLanguage)
	if err != nil {
		s.logger.Warn("Failed to resolve working language",
			zap.String("host", req.Host),
			zap.Error(err))
		lang = nil
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerGUID, working.CustomerGUID.String())
	telemetry.SetAttribute(span, telemetry.SpanAttrImpersonated, impersonator != nil)
	telemetry.SetAttribute(span, telemetry.SpanAttrCurrencyCode, cur.CurrencyCode)

	return &WorkContext{
		Customer:     working,
		Impersonator: impersonator,
		Store:        st,
		Currency:     cur,
		Language:     lang,
		TaxDisplay:   display,
	}, nil
}

// Customers exposes the customer resolution pipeline
func (s *Service) Customers() *CustomerResolver { return s.customers }

// Currencies exposes the currency resolution waterfall
func (s *Service) Currencies() *CurrencyResolver { return s.currencies }

// Languages exposes the language resolver
func (s *Service) Languages() *LanguageResolver { return s.languages }

// Taxes exposes the tax display resolver
func (s *Service) Taxes() *TaxResolver { return s.taxes }

// resolveStore maps the request host to a store, falling back to the first
// configured store for unknown hosts.
func (s *Service) resolveStore(ctx context.Context, host string) (*store.Store, error) {
	st, err := s.stores.FindByHost(ctx, host)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	all, err := s.stores.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, shared.NewDomainError("NO_STORE", "No store is configured for this deployment")
	}
	return all[0], nil
}
