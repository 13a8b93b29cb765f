package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// baselineRoles are the well-known roles every deployment carries.
var baselineRoles = []struct {
	name       string
	systemName string
	systemRole bool
}{
	{"Guests", customer.RoleGuests, true},
	{"Registered", customer.RoleRegistered, true},
	{"Administrators", customer.RoleAdministrators, true},
}

// baselineSystemAccounts are provisioned at startup so the identity
// detectors always find their system records.
var baselineSystemAccounts = []string{
	customer.SystemNameBackgroundTask,
	customer.SystemNameDocumentRenderer,
	customer.SystemNameSearchEngine,
	customer.SystemNameWebhook,
}

// EnsureBaseline provisions the well-known roles and system accounts the
// resolution pipeline depends on. Safe to call on every startup.
func (s *Service) EnsureBaseline(ctx context.Context) error {
	for _, def := range baselineRoles {
		_, err := s.roles.FindBySystemName(ctx, def.systemName)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("looking up role %s: %w", def.systemName, err)
		}

		role, err := customer.NewRole(def.name, def.systemName)
		if err != nil {
			return err
		}
		role.IsSystemRole = def.systemRole
		if err := s.roles.Create(ctx, role); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("creating role %s: %w", def.systemName, err)
		}
		s.logger.Info("Provisioned customer role", zap.String("system_name", def.systemName))
	}

	for _, name := range baselineSystemAccounts {
		if _, err := s.EnsureSystemAccount(ctx, name); err != nil {
			return fmt.Errorf("ensuring system account %s: %w", name, err)
		}
	}

	return nil
}
