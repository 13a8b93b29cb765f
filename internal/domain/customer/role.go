package customer

import (
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/tax"
)

// Role represents a customer role. Roles carry an optional tax display
// override consulted during tax display resolution.
type Role struct {
	shared.BaseAggregateRoot
	Name           string
	SystemName     string
	Active         bool
	IsSystemRole   bool
	TaxDisplayType *tax.DisplayType
}

// NewRole creates a new customer role
func NewRole(name, systemName string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot exceed 200 characters")
	}

	r := &Role{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SystemName:        strings.TrimSpace(systemName),
		Active:            true,
	}

	return r, nil
}

// SetTaxDisplayType sets the role's tax display override
func (r *Role) SetTaxDisplayType(t tax.DisplayType) error {
	if !t.Valid() {
		return shared.NewDomainError("INVALID_TAX_DISPLAY_TYPE", "Unknown tax display type")
	}

	r.TaxDisplayType = &t
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRoleSavedEvent(r))

	return nil
}

// ClearTaxDisplayType removes the role's tax display override
func (r *Role) ClearTaxDisplayType() {
	r.TaxDisplayType = nil
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRoleSavedEvent(r))
}

// Deactivate deactivates the role
func (r *Role) Deactivate() error {
	if !r.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Role is already inactive")
	}

	r.Active = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRoleSavedEvent(r))

	return nil
}
