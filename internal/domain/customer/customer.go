package customer

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Well-known system account names. System accounts are permanent records
// representing non-human callers and are exempt from lifecycle checks.
const (
	SystemNameBackgroundTask   = "BackgroundTask"
	SystemNameDocumentRenderer = "DocumentRenderer"
	SystemNameSearchEngine     = "SearchEngine"
	SystemNameWebhook          = "Webhook"
)

// Well-known role system names
const (
	RoleGuests         = "Guests"
	RoleRegistered     = "Registered"
	RoleAdministrators = "Administrators"
)

// Field length limits enforced when seeding visitor telemetry
const (
	MaxUserAgentLength       = 255
	MaxDeviceLabelLength     = 100
	MaxLastVisitedPageLength = 2048
	MaxIPAddressLength       = 45
)

// Customer represents a storefront visitor or account.
// It is the aggregate root for customer-related operations.
type Customer struct {
	shared.BaseAggregateRoot
	CustomerGUID      uuid.UUID
	Email             string
	Username          string
	Active            bool
	Deleted           bool
	IsSystemAccount   bool
	SystemName        string
	ClientFingerprint string
	LastIPAddress     string
	LastActivityAt    time.Time
	RoleIDs           []uuid.UUID // Loaded by repository
	Roles             []*Role     // Loaded by repository
	Attributes        []GenericAttribute
}

// NewGuestCustomer creates a new anonymous guest customer.
// The fingerprint may be empty when the visitor was recognized by cookie only.
func NewGuestCustomer(fingerprint string) *Customer {
	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerGUID:      uuid.New(),
		Active:            true,
		ClientFingerprint: fingerprint,
		LastActivityAt:    time.Now(),
		RoleIDs:           make([]uuid.UUID, 0),
		Attributes:        make([]GenericAttribute, 0),
	}

	c.AddDomainEvent(NewCustomerCreatedEvent(c))

	return c
}

// NewSystemCustomer creates a new system account with the given system name.
func NewSystemCustomer(systemName string) (*Customer, error) {
	systemName = strings.TrimSpace(systemName)
	if systemName == "" {
		return nil, shared.NewDomainError("INVALID_SYSTEM_NAME", "System name cannot be empty")
	}
	if len(systemName) > 100 {
		return nil, shared.NewDomainError("INVALID_SYSTEM_NAME", "System name cannot exceed 100 characters")
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerGUID:      uuid.New(),
		Active:            true,
		IsSystemAccount:   true,
		SystemName:        systemName,
		LastActivityAt:    time.Now(),
		RoleIDs:           make([]uuid.UUID, 0),
		Attributes:        make([]GenericAttribute, 0),
	}

	c.AddDomainEvent(NewCustomerCreatedEvent(c))

	return c, nil
}

// IsUsable reports whether the customer can act as the working customer.
// System accounts bypass the active/deleted lifecycle check entirely.
func (c *Customer) IsUsable() bool {
	if c.IsSystemAccount {
		return true
	}
	return c.Active && !c.Deleted
}

// IsRegistered reports whether the customer holds the registered role.
// Registered accounts are never treated as guests.
func (c *Customer) IsRegistered() bool {
	return c.HasRoleSystemName(RoleRegistered)
}

// IsGuest reports whether the customer is an anonymous guest visitor.
func (c *Customer) IsGuest() bool {
	if c.IsSystemAccount {
		return false
	}
	if c.IsRegistered() {
		return false
	}
	return true
}

// IsSearchEngine reports whether the customer is the bot system account.
func (c *Customer) IsSearchEngine() bool {
	return c.IsSystemAccount && c.SystemName == SystemNameSearchEngine
}

// IsBackgroundTask reports whether the customer is the task-scheduler account.
func (c *Customer) IsBackgroundTask() bool {
	return c.IsSystemAccount && c.SystemName == SystemNameBackgroundTask
}

// HasRoleSystemName checks role membership by role system name.
// Inactive roles do not count.
func (c *Customer) HasRoleSystemName(systemName string) bool {
	for _, r := range c.Roles {
		if r.Active && r.SystemName == systemName {
			return true
		}
	}
	return false
}

// SetEmail sets the customer's email address
func (c *Customer) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	c.Email = email
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// RecordIPAddress stores the best-effort caller address, truncated to fit.
func (c *Customer) RecordIPAddress(ip string) {
	c.LastIPAddress = truncate(ip, MaxIPAddressLength)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Touch refreshes the customer's activity timestamp, keeping the
// fingerprint freshness window alive.
func (c *Customer) Touch() {
	c.LastActivityAt = time.Now()
	c.UpdatedAt = c.LastActivityAt
	c.IncrementVersion()
}

// SoftDelete marks the customer as deleted. System accounts cannot be deleted.
func (c *Customer) SoftDelete() error {
	if c.IsSystemAccount {
		return shared.NewDomainError("SYSTEM_ACCOUNT", "System accounts cannot be deleted")
	}

	c.Deleted = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerDeletedEvent(c))

	return nil
}

// Deactivate deactivates the customer
func (c *Customer) Deactivate() error {
	if !c.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}

	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// truncate limits s to max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
