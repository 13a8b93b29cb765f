package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/store"
)

// CurrencyModel is the persistence model for the Currency aggregate.
type CurrencyModel struct {
	AggregateModel
	Name            string          `gorm:"type:varchar(100);not null"`
	CurrencyCode    string          `gorm:"type:varchar(3);not null;uniqueIndex"`
	Rate            decimal.Decimal `gorm:"type:decimal(18,8);not null;default:1"`
	DisplayLocale   string          `gorm:"type:varchar(20)"`
	Published       bool            `gorm:"not null;default:false;index"`
	DisplayOrder    int             `gorm:"not null;default:0"`
	DomainEndings   string          `gorm:"type:varchar(500)"`
	LimitedToStores bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CurrencyModel) TableName() string {
	return "currencies"
}

// ToDomain converts the persistence model to a domain Currency aggregate.
// Store mappings are attached separately by the repository.
func (m *CurrencyModel) ToDomain() *directory.Currency {
	return &directory.Currency{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		CurrencyCode:      m.CurrencyCode,
		Rate:              m.Rate,
		DisplayLocale:     m.DisplayLocale,
		Published:         m.Published,
		DisplayOrder:      m.DisplayOrder,
		DomainEndings:     m.DomainEndings,
		LimitedToStores:   m.LimitedToStores,
		StoreIDs:          make([]uuid.UUID, 0),
	}
}

// FromDomain populates the persistence model from a domain Currency aggregate.
func (m *CurrencyModel) FromDomain(c *directory.Currency) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.CurrencyCode = c.CurrencyCode
	m.Rate = c.Rate
	m.DisplayLocale = c.DisplayLocale
	m.Published = c.Published
	m.DisplayOrder = c.DisplayOrder
	m.DomainEndings = c.DomainEndings
	m.LimitedToStores = c.LimitedToStores
}

// CurrencyModelFromDomain creates a new persistence model from a domain Currency.
func CurrencyModelFromDomain(c *directory.Currency) *CurrencyModel {
	m := &CurrencyModel{}
	m.FromDomain(c)
	return m
}

// CurrencyStoreMappingModel links store-limited currencies to their stores.
type CurrencyStoreMappingModel struct {
	CurrencyID uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CurrencyStoreMappingModel) TableName() string {
	return "currency_store_mappings"
}

// CountryModel is the persistence model for the Country aggregate.
type CountryModel struct {
	AggregateModel
	Name               string     `gorm:"type:varchar(100);not null"`
	TwoLetterISOCode   string     `gorm:"type:varchar(2);not null;uniqueIndex"`
	ThreeLetterISOCode string     `gorm:"type:varchar(3)"`
	DefaultCurrencyID  *uuid.UUID `gorm:"type:uuid"`
	Published          bool       `gorm:"not null;default:true"`
	DisplayOrder       int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CountryModel) TableName() string {
	return "countries"
}

// ToDomain converts the persistence model to a domain Country aggregate.
func (m *CountryModel) ToDomain() *directory.Country {
	return &directory.Country{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		Name:               m.Name,
		TwoLetterISOCode:   m.TwoLetterISOCode,
		ThreeLetterISOCode: m.ThreeLetterISOCode,
		DefaultCurrencyID:  m.DefaultCurrencyID,
		Published:          m.Published,
		DisplayOrder:       m.DisplayOrder,
	}
}

// FromDomain populates the persistence model from a domain Country aggregate.
func (m *CountryModel) FromDomain(c *directory.Country) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.TwoLetterISOCode = c.TwoLetterISOCode
	m.ThreeLetterISOCode = c.ThreeLetterISOCode
	m.DefaultCurrencyID = c.DefaultCurrencyID
	m.Published = c.Published
	m.DisplayOrder = c.DisplayOrder
}

// LanguageModel is the persistence model for the Language aggregate.
type LanguageModel struct {
	AggregateModel
	Name            string `gorm:"type:varchar(100);not null"`
	LanguageCulture string `gorm:"type:varchar(20);not null"`
	Published       bool   `gorm:"not null;default:true;index"`
	DisplayOrder    int    `gorm:"not null;default:0"`
	LimitedToStores bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (LanguageModel) TableName() string {
	return "languages"
}

// ToDomain converts the persistence model to a domain Language aggregate.
func (m *LanguageModel) ToDomain() *directory.Language {
	return &directory.Language{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		LanguageCulture:   m.LanguageCulture,
		Published:         m.Published,
		DisplayOrder:      m.DisplayOrder,
		LimitedToStores:   m.LimitedToStores,
		StoreIDs:          make([]uuid.UUID, 0),
	}
}

// FromDomain populates the persistence model from a domain Language aggregate.
func (m *LanguageModel) FromDomain(l *directory.Language) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.Name = l.Name
	m.LanguageCulture = l.LanguageCulture
	m.Published = l.Published
	m.DisplayOrder = l.DisplayOrder
	m.LimitedToStores = l.LimitedToStores
}

// LanguageStoreMappingModel links store-limited languages to their stores.
type LanguageStoreMappingModel struct {
	LanguageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LanguageStoreMappingModel) TableName() string {
	return "language_store_mappings"
}

// StoreModel is the persistence model for the Store aggregate.
type StoreModel struct {
	AggregateModel
	Name              string     `gorm:"type:varchar(200);not null"`
	HostName          string     `gorm:"type:varchar(255);not null;index"`
	DefaultCurrencyID *uuid.UUID `gorm:"type:uuid"`
	DefaultLanguageID *uuid.UUID `gorm:"type:uuid"`
	DisplayOrder      int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store aggregate.
func (m *StoreModel) ToDomain() *store.Store {
	return &store.Store{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		HostName:          m.HostName,
		DefaultCurrencyID: m.DefaultCurrencyID,
		DefaultLanguageID: m.DefaultLanguageID,
		DisplayOrder:      m.DisplayOrder,
	}
}

// FromDomain populates the persistence model from a domain Store aggregate.
func (m *StoreModel) FromDomain(s *store.Store) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.HostName = s.HostName
	m.DefaultCurrencyID = s.DefaultCurrencyID
	m.DefaultLanguageID = s.DefaultLanguageID
	m.DisplayOrder = s.DisplayOrder
}
