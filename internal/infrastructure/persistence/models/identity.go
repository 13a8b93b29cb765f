package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/tax"
)

// CustomerModel is the persistence model for the Customer aggregate.
type CustomerModel struct {
	AggregateModel
	CustomerGUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Email             string    `gorm:"type:varchar(200);index"`
	Username          string    `gorm:"type:varchar(200)"`
	Active            bool      `gorm:"not null;default:true"`
	Deleted           bool      `gorm:"not null;default:false"`
	IsSystemAccount   bool      `gorm:"not null;default:false"`
	SystemName        string    `gorm:"type:varchar(100);index"`
	ClientFingerprint string    `gorm:"type:varchar(64);index"`
	LastIPAddress     string    `gorm:"type:varchar(45)"`
	LastActivityAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer aggregate.
// Roles and attributes are attached separately by the repository.
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerGUID:      m.CustomerGUID,
		Email:             m.Email,
		Username:          m.Username,
		Active:            m.Active,
		Deleted:           m.Deleted,
		IsSystemAccount:   m.IsSystemAccount,
		SystemName:        m.SystemName,
		ClientFingerprint: m.ClientFingerprint,
		LastIPAddress:     m.LastIPAddress,
		LastActivityAt:    m.LastActivityAt,
		RoleIDs:           make([]uuid.UUID, 0),
		Roles:             make([]*customer.Role, 0),
		Attributes:        make([]customer.GenericAttribute, 0),
	}
}

// FromDomain populates the persistence model from a domain Customer aggregate.
func (m *CustomerModel) FromDomain(c *customer.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerGUID = c.CustomerGUID
	m.Email = c.Email
	m.Username = c.Username
	m.Active = c.Active
	m.Deleted = c.Deleted
	m.IsSystemAccount = c.IsSystemAccount
	m.SystemName = c.SystemName
	m.ClientFingerprint = c.ClientFingerprint
	m.LastIPAddress = c.LastIPAddress
	m.LastActivityAt = c.LastActivityAt
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer.
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// RoleModel is the persistence model for the customer Role aggregate.
type RoleModel struct {
	AggregateModel
	Name           string `gorm:"type:varchar(200);not null"`
	SystemName     string `gorm:"type:varchar(100);index"`
	Active         bool   `gorm:"not null;default:true"`
	IsSystemRole   bool   `gorm:"not null;default:false"`
	TaxDisplayType *int
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "customer_roles"
}

// ToDomain converts the persistence model to a domain Role aggregate.
func (m *RoleModel) ToDomain() *customer.Role {
	r := &customer.Role{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		SystemName:        m.SystemName,
		Active:            m.Active,
		IsSystemRole:      m.IsSystemRole,
	}
	if m.TaxDisplayType != nil {
		t := tax.DisplayType(*m.TaxDisplayType)
		r.TaxDisplayType = &t
	}
	return r
}

// FromDomain populates the persistence model from a domain Role aggregate.
func (m *RoleModel) FromDomain(r *customer.Role) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Name = r.Name
	m.SystemName = r.SystemName
	m.Active = r.Active
	m.IsSystemRole = r.IsSystemRole
	if r.TaxDisplayType != nil {
		v := int(*r.TaxDisplayType)
		m.TaxDisplayType = &v
	} else {
		m.TaxDisplayType = nil
	}
}

// RoleModelFromDomain creates a new persistence model from a domain Role.
func RoleModelFromDomain(r *customer.Role) *RoleModel {
	m := &RoleModel{}
	m.FromDomain(r)
	return m
}

// CustomerRoleMappingModel links customers to their roles.
type CustomerRoleMappingModel struct {
	CustomerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerRoleMappingModel) TableName() string {
	return "customer_role_mappings"
}

// GenericAttributeModel is the persistence model for customer attributes.
type GenericAttributeModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attr_customer_key,priority:1"`
	Key        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_attr_customer_key,priority:2"`
	Value      string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GenericAttributeModel) TableName() string {
	return "customer_attributes"
}

// ToDomain converts the persistence model to a domain GenericAttribute.
func (m *GenericAttributeModel) ToDomain() customer.GenericAttribute {
	return customer.GenericAttribute{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Key:        m.Key,
		Value:      m.Value,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
