package directory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Currency represents a currency a store can publish prices in.
// It is the aggregate root for currency-related operations.
type Currency struct {
	shared.BaseAggregateRoot
	Name            string
	CurrencyCode    string // ISO 4217
	Rate            decimal.Decimal
	DisplayLocale   string
	Published       bool
	DisplayOrder    int
	DomainEndings   string // comma-separated host endings, e.g. ".co.uk,.uk"
	LimitedToStores bool
	StoreIDs        []uuid.UUID // Loaded by repository; meaningful when LimitedToStores
}

// NewCurrency creates a new currency with the given code and exchange rate
func NewCurrency(name, code string, rate decimal.Decimal) (*Currency, error) {
	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY_NAME", "Currency name cannot be empty")
	}
	if len(code) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY_CODE", "Currency code must be a 3-letter ISO code")
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_CURRENCY_RATE", "Currency rate must be positive")
	}

	return &Currency{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CurrencyCode:      code,
		Rate:              rate,
		Published:         false,
		StoreIDs:          make([]uuid.UUID, 0),
	}, nil
}

// Publish marks the currency as published
func (c *Currency) Publish() {
	c.Published = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Unpublish marks the currency as unpublished
func (c *Currency) Unpublish() {
	c.Published = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// AvailableForStore reports whether the currency can be used on the given
// store. A currency without store restrictions is available everywhere.
func (c *Currency) AvailableForStore(storeID uuid.UUID) bool {
	if !c.LimitedToStores {
		return true
	}
	for _, id := range c.StoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}

// MatchesHost reports whether one of the currency's configured domain
// endings matches the request host name.
func (c *Currency) MatchesHost(host string) bool {
	if c.DomainEndings == "" || host == "" {
		return false
	}
	host = strings.ToLower(host)
	for _, ending := range strings.Split(c.DomainEndings, ",") {
		ending = strings.ToLower(strings.TrimSpace(ending))
		if ending != "" && strings.HasSuffix(host, ending) {
			return true
		}
	}
	return false
}
