package models

import (
	"time"

	"github.com/google/uuid"
)

// GeoIPRangeModel maps a contiguous IPv4 address range to a country.
// Addresses are stored as big-endian unsigned integers.
type GeoIPRangeModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	IPStart    uint32    `gorm:"not null;index"`
	IPEnd      uint32    `gorm:"not null"`
	CountryISO string    `gorm:"type:varchar(2);not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GeoIPRangeModel) TableName() string {
	return "geoip_ranges"
}
