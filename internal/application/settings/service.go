// Package settings provides typed access to the deployment-wide setting
// records and publishes change events so derived caches can invalidate.
package settings

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/settings"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/tax"
	"go.uber.org/zap"
)

// Service reads and writes deployment settings
type Service struct {
	repo   settings.Repository
	events shared.EventPublisher
	logger *zap.Logger
}

// NewService creates a new settings service
func NewService(repo settings.Repository, events shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// TaxSettings assembles the deployment tax configuration view
func (s *Service) TaxSettings(ctx context.Context) (settings.TaxSettings, error) {
	view := settings.TaxSettings{
		DefaultDisplayType: tax.DisplayIncludingTax,
	}

	if v, err := s.getInt(ctx, settings.NameTaxDefaultDisplayType); err == nil {
		dt := tax.DisplayType(v)
		if dt.Valid() {
			view.DefaultDisplayType = dt
		}
	}
	view.AllowCustomerSelection = s.getBool(ctx, settings.NameTaxAllowCustomerSelect)
	view.EUVatEnabled = s.getBool(ctx, settings.NameTaxEUVatEnabled)

	return view, nil
}

// CurrencySettings assembles the deployment currency configuration view
func (s *Service) CurrencySettings(ctx context.Context) (settings.CurrencySettings, error) {
	view := settings.CurrencySettings{}

	raw, err := s.repo.Get(ctx, settings.NameCurrencyPrimaryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return view, nil
		}
		return view, err
	}
	if id, perr := uuid.Parse(raw); perr == nil {
		view.PrimaryCurrencyID = id
	}

	return view, nil
}

// Set writes a setting and publishes a change event
func (s *Service) Set(ctx context.Context, name, value string) error {
	setting, err := s.repo.Set(ctx, name, value)
	if err != nil {
		return err
	}

	if s.events != nil {
		event := settings.NewSettingChangedEvent(setting)
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish setting change",
				zap.String("name", name),
				zap.Error(err))
		}
	}

	return nil
}

// SetDefaultTaxDisplayType writes the deployment default display type
func (s *Service) SetDefaultTaxDisplayType(ctx context.Context, dt tax.DisplayType) error {
	if !dt.Valid() {
		return shared.NewDomainError("INVALID_TAX_DISPLAY_TYPE", "Unknown tax display type")
	}
	return s.Set(ctx, settings.NameTaxDefaultDisplayType, strconv.Itoa(int(dt)))
}

func (s *Service) getInt(ctx context.Context, name string) (int, error) {
	raw, err := s.repo.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}

func (s *Service) getBool(ctx context.Context, name string) bool {
	raw, err := s.repo.Get(ctx, name)
	if err != nil {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return v
}
