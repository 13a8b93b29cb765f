package settings

import (
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Well-known setting names
const (
	NameTaxDefaultDisplayType   = "tax.default_display_type"
	NameTaxAllowCustomerSelect  = "tax.allow_customer_selection"
	NameTaxEUVatEnabled         = "tax.eu_vat_enabled"
	NameCurrencyPrimaryID       = "currency.primary_id"
	NameCustomerGuestWindowSecs = "customer.guest_fingerprint_window_seconds"
	NameStoreDefaultID          = "store.default_id"
)

// Setting is a deployment-wide key/value configuration record.
type Setting struct {
	shared.BaseEntity
	Name  string
	Value string
}

// NewSetting creates a new setting record
func NewSetting(name, value string) (*Setting, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SETTING_NAME", "Setting name cannot be empty")
	}

	return &Setting{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.ToLower(name),
		Value:      value,
	}, nil
}

// SetValue updates the setting value
func (s *Setting) SetValue(value string) {
	s.Value = value
	s.UpdatedAt = time.Now()
}
