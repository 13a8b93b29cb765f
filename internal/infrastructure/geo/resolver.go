package geo

import (
	"context"
	"encoding/binary"
	"errors"
	"net/netip"

	"github.com/storefront/backend/internal/application/workcontext"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IPRangeResolver maps client addresses to countries using an IPv4 range
// table joined against the country catalog. Addresses outside the table,
// and IPv6 addresses, resolve to no country rather than an error.
type IPRangeResolver struct {
	db        *gorm.DB
	countries directory.CountryRepository
	logger    *zap.Logger
}

// NewIPRangeResolver creates a new range-table geo resolver
func NewIPRangeResolver(db *gorm.DB, countries directory.CountryRepository, logger *zap.Logger) *IPRangeResolver {
	return &IPRangeResolver{db: db, countries: countries, logger: logger}
}

// LookupCountry returns the country covering the address, or nil when it
// cannot be determined.
func (r *IPRangeResolver) LookupCountry(ctx context.Context, ip string) (*directory.Country, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return nil, nil
	}
	v4 := addr.As4()
	value := binary.BigEndian.Uint32(v4[:])

	var rangeRow models.GeoIPRangeModel
	err = r.db.WithContext(ctx).
		Where("ip_start <= ? AND ip_end >= ?", value, value).
		Order("ip_start DESC").
		First(&rangeRow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	country, err := r.countries.FindByISOCode(ctx, rangeRow.CountryISO)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Debug("IP range points at unknown country",
				zap.String("iso_code", rangeRow.CountryISO))
			return nil, nil
		}
		return nil, err
	}
	return country, nil
}

var _ workcontext.GeoResolver = (*IPRangeResolver)(nil)
