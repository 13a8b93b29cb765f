package directory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Country represents a country known to the deployment. A country may name
// a default currency used when resolving a visitor's working currency by
// geographic location.
type Country struct {
	shared.BaseAggregateRoot
	Name               string
	TwoLetterISOCode   string
	ThreeLetterISOCode string
	DefaultCurrencyID  *uuid.UUID
	Published          bool
	DisplayOrder       int
}

// NewCountry creates a new country
func NewCountry(name, twoLetterISO string) (*Country, error) {
	name = strings.TrimSpace(name)
	twoLetterISO = strings.ToUpper(strings.TrimSpace(twoLetterISO))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_COUNTRY_NAME", "Country name cannot be empty")
	}
	if len(twoLetterISO) != 2 {
		return nil, shared.NewDomainError("INVALID_COUNTRY_CODE", "Country code must be a 2-letter ISO code")
	}

	return &Country{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		TwoLetterISOCode:  twoLetterISO,
		Published:         true,
	}, nil
}
