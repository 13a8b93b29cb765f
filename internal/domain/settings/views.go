package settings

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/tax"
)

// TaxSettings is the deployment-wide tax configuration view assembled from
// the raw setting records.
type TaxSettings struct {
	DefaultDisplayType     tax.DisplayType
	AllowCustomerSelection bool
	EUVatEnabled           bool
}

// CurrencySettings is the deployment-wide currency configuration view.
type CurrencySettings struct {
	PrimaryCurrencyID uuid.UUID
}
