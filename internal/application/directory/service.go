// Package directory implements the customer directory consumed by the
// work-context resolution pipeline: lookup and provisioning of customer
// records by GUID, system name, or client fingerprint.
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Service provides customer directory operations over the repositories.
type Service struct {
	customers customer.Repository
	roles     customer.RoleRepository
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new directory service
func NewService(
	customers customer.Repository,
	roles customer.RoleRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		customers: customers,
		roles:     roles,
		events:    events,
		logger:    logger,
	}
}

// FindBySystemName returns the system account with the given name
func (s *Service) FindBySystemName(ctx context.Context, systemName string) (*customer.Customer, error) {
	return s.customers.FindBySystemName(ctx, systemName)
}

// FindByGUID returns the customer with the given public GUID
func (s *Service) FindByGUID(ctx context.Context, guid uuid.UUID) (*customer.Customer, error) {
	return s.customers.FindByGUID(ctx, guid)
}

// FindByFingerprint returns the freshest customer for the fingerprint
// within maxAge
func (s *Service) FindByFingerprint(ctx context.Context, fingerprint string, maxAge time.Duration) (*customer.Customer, error) {
	return s.customers.FindByFingerprint(ctx, fingerprint, maxAge)
}

// Authenticated returns the customer for the principal attached to ctx, or
// nil when the request carries no authenticated principal.
func (s *Service) Authenticated(ctx context.Context) (*customer.Customer, error) {
	guid, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, nil
	}
	c, err := s.customers.FindByGUID(ctx, guid)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// CreateGuest provisions a new guest record for the fingerprint. The seed
// callback populates best-effort telemetry; attribute persistence failures
// are swallowed so creation never fails on optional data.
func (s *Service) CreateGuest(ctx context.Context, fingerprint string, seed func(*customer.Customer)) (*customer.Customer, error) {
	c := customer.NewGuestCustomer(fingerprint)
	if seed != nil {
		seed(c)
	}

	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}

	if role, err := s.roles.FindBySystemName(ctx, customer.RoleGuests); err == nil {
		if err := s.customers.AddToRole(ctx, c.ID, role.ID); err != nil {
			s.logger.Warn("Failed to add guest to role",
				zap.String("customer_guid", c.CustomerGUID.String()),
				zap.Error(err))
		} else {
			c.RoleIDs = append(c.RoleIDs, role.ID)
			c.Roles = append(c.Roles, role)
		}
	}

	for _, attr := range c.Attributes {
		if err := s.customers.SaveAttribute(ctx, c.ID, attr.Key, attr.Value); err != nil {
			// Telemetry seeding is best-effort.
			s.logger.Warn("Failed to persist guest attribute",
				zap.String("customer_guid", c.CustomerGUID.String()),
				zap.String("key", attr.Key),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, c)

	return c, nil
}

// EnsureSystemAccount returns the system account with the given name,
// creating it on first sight.
func (s *Service) EnsureSystemAccount(ctx context.Context, systemName string) (*customer.Customer, error) {
	c, err := s.customers.FindBySystemName(ctx, systemName)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c, err = customer.NewSystemCustomer(systemName)
	if err != nil {
		return nil, err
	}
	if err := s.customers.Create(ctx, c); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost a provisioning race; the record exists now.
			return s.customers.FindBySystemName(ctx, systemName)
		}
		return nil, err
	}

	s.logger.Info("Provisioned system account", zap.String("system_name", systemName))
	s.publishEvents(ctx, c)

	return c, nil
}

// RoleByID returns the role with the given id
func (s *Service) RoleByID(ctx context.Context, id uuid.UUID) (*customer.Role, error) {
	return s.roles.FindByID(ctx, id)
}

// SaveRole persists role modifications and publishes the role's pending
// events, letting subscribers react to tax display override changes.
func (s *Service) SaveRole(ctx context.Context, r *customer.Role) error {
	if err := s.roles.Update(ctx, r); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, r.GetDomainEvents()...); err != nil {
			s.logger.Error("Failed to publish role events",
				zap.String("role_name", r.Name),
				zap.Error(err))
		}
	}
	r.ClearDomainEvents()

	return nil
}

// SaveAttribute persists a generic attribute for a customer
func (s *Service) SaveAttribute(ctx context.Context, customerID uuid.UUID, key, value string) error {
	return s.customers.SaveAttribute(ctx, customerID, key, value)
}

// DeleteAttribute removes a generic attribute from a customer
func (s *Service) DeleteAttribute(ctx context.Context, customerID uuid.UUID, key string) error {
	return s.customers.DeleteAttribute(ctx, customerID, key)
}

func (s *Service) publishEvents(ctx context.Context, c *customer.Customer) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, c.GetDomainEvents()...); err != nil {
		s.logger.Error("Failed to publish customer events", zap.Error(err))
	}
	c.ClearDomainEvents()
}
