package maintenance

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/customer"
	"go.uber.org/zap"
)

// GuestPurgeService removes abandoned guest records. A guest counts as
// abandoned when it has no registered role, no email, and no activity
// within the configured window.
type GuestPurgeService struct {
	customers     customer.Repository
	inactiveAfter time.Duration
	logger        *zap.Logger
}

// NewGuestPurgeService creates a new guest purge service
func NewGuestPurgeService(customers customer.Repository, inactiveAfter time.Duration, logger *zap.Logger) *GuestPurgeService {
	return &GuestPurgeService{
		customers:     customers,
		inactiveAfter: inactiveAfter,
		logger:        logger,
	}
}

// PurgeAbandonedGuests deletes abandoned guests and returns how many
// records were removed.
func (s *GuestPurgeService) PurgeAbandonedGuests(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.inactiveAfter)

	purged, err := s.customers.PurgeGuests(ctx, cutoff)
	if err != nil {
		s.logger.Error("Guest purge failed", zap.Error(err))
		return 0, err
	}

	if purged > 0 {
		s.logger.Info("Purged abandoned guest customers",
			zap.Int64("purged", purged),
			zap.Time("cutoff", cutoff))
	}
	return purged, nil
}
