package customer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for customer persistence
type Repository interface {
	// Create creates a new customer
	Create(ctx context.Context, c *Customer) error

	// Update updates an existing customer
	Update(ctx context.Context, c *Customer) error

	// FindByID finds a customer by ID, with roles and attributes loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByGUID finds a customer by its stable public GUID
	FindByGUID(ctx context.Context, guid uuid.UUID) (*Customer, error)

	// FindBySystemName finds a system account by its system name
	FindBySystemName(ctx context.Context, systemName string) (*Customer, error)

	// FindByEmail finds a customer by email address
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// FindByFingerprint finds the most recent customer for a client
	// fingerprint whose activity falls within maxAge
	FindByFingerprint(ctx context.Context, fingerprint string, maxAge time.Duration) (*Customer, error)

	// SaveAttribute persists a single generic attribute for a customer
	SaveAttribute(ctx context.Context, customerID uuid.UUID, key, value string) error

	// DeleteAttribute removes a generic attribute from a customer
	DeleteAttribute(ctx context.Context, customerID uuid.UUID, key string) error

	// AddToRole adds a customer to a role
	AddToRole(ctx context.Context, customerID, roleID uuid.UUID) error

	// PurgeGuests hard-deletes guest customers inactive since the cutoff.
	// Returns the number of deleted records.
	PurgeGuests(ctx context.Context, inactiveSince time.Time) (int64, error)
}

// RoleRepository defines the interface for customer role persistence
type RoleRepository interface {
	// Create creates a new role
	Create(ctx context.Context, r *Role) error

	// Update updates an existing role
	Update(ctx context.Context, r *Role) error

	// FindByID finds a role by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)

	// FindBySystemName finds a role by its system name
	FindBySystemName(ctx context.Context, systemName string) (*Role, error)

	// FindAll returns all roles
	FindAll(ctx context.Context) ([]*Role, error)
}
