package customer

import (
	"github.com/storefront/backend/internal/domain/shared"
)

// Event type constants
const (
	EventCustomerCreated = "customer.created"
	EventCustomerDeleted = "customer.deleted"
	EventRoleSaved       = "customer.role_saved"
)

// CustomerCreatedEvent is raised when a customer record is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerGUID    string `json:"customer_guid"`
	IsSystemAccount bool   `json:"is_system_account"`
	SystemName      string `json:"system_name,omitempty"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCustomerCreated, c.ID, "Customer"),
		CustomerGUID:    c.CustomerGUID.String(),
		IsSystemAccount: c.IsSystemAccount,
		SystemName:      c.SystemName,
	}
}

// CustomerDeletedEvent is raised when a customer is soft-deleted
type CustomerDeletedEvent struct {
	shared.BaseDomainEvent
	CustomerGUID string `json:"customer_guid"`
}

// NewCustomerDeletedEvent creates a new CustomerDeletedEvent
func NewCustomerDeletedEvent(c *Customer) *CustomerDeletedEvent {
	return &CustomerDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCustomerDeleted, c.ID, "Customer"),
		CustomerGUID:    c.CustomerGUID.String(),
	}
}

// RoleSavedEvent is raised when a customer role is modified. Subscribers use
// it to invalidate role-derived caches.
type RoleSavedEvent struct {
	shared.BaseDomainEvent
	SystemName string `json:"system_name"`
}

// NewRoleSavedEvent creates a new RoleSavedEvent
func NewRoleSavedEvent(r *Role) *RoleSavedEvent {
	return &RoleSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventRoleSaved, r.ID, "Role"),
		SystemName:      r.SystemName,
	}
}
