package customer

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Generic attribute keys used by the work-context resolution
const (
	AttrLanguageID             = "LanguageId"
	AttrCurrencyID             = "CurrencyId"
	AttrImpersonatedCustomerID = "ImpersonatedCustomerId"
	AttrTaxDisplayTypeID       = "TaxDisplayTypeId"
	AttrUserAgent              = "UserAgent"
	AttrDeviceLabel            = "DeviceLabel"
	AttrLastVisitedPage        = "LastVisitedPage"
	AttrVatExempt              = "VatExempt"
)

// GenericAttribute is a string-keyed, string-valued attribute attached to a
// customer. Typed accessors on Customer interpret the stored value.
type GenericAttribute struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Key        string
	Value      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GetAttribute returns the raw attribute value and whether it is present.
func (c *Customer) GetAttribute(key string) (string, bool) {
	for _, a := range c.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// GetAttributeUUID parses the attribute value as a UUID.
// Missing or malformed values return (uuid.Nil, false).
func (c *Customer) GetAttributeUUID(key string) (uuid.UUID, bool) {
	raw, ok := c.GetAttribute(key)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetAttributeInt parses the attribute value as an integer.
func (c *Customer) GetAttributeInt(key string) (int, bool) {
	raw, ok := c.GetAttribute(key)
	if !ok || raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetAttributeBool parses the attribute value as a boolean.
func (c *Customer) GetAttributeBool(key string) bool {
	raw, ok := c.GetAttribute(key)
	if !ok {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return v
}

// SetAttribute sets an attribute in the in-memory bag. Persistence happens
// through the repository's SaveAttribute.
func (c *Customer) SetAttribute(key, value string) {
	now := time.Now()
	for i := range c.Attributes {
		if c.Attributes[i].Key == key {
			c.Attributes[i].Value = value
			c.Attributes[i].UpdatedAt = now
			return
		}
	}
	c.Attributes = append(c.Attributes, GenericAttribute{
		ID:         uuid.New(),
		CustomerID: c.ID,
		Key:        key,
		Value:      value,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// RemoveAttribute clears an attribute from the in-memory bag.
func (c *Customer) RemoveAttribute(key string) {
	for i := range c.Attributes {
		if c.Attributes[i].Key == key {
			c.Attributes = append(c.Attributes[:i], c.Attributes[i+1:]...)
			return
		}
	}
}
