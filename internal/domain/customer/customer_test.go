package customer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuestCustomer(t *testing.T) {
	t.Run("creates active guest with fresh identity", func(t *testing.T) {
		c := NewGuestCustomer("fp-123")

		assert.True(t, c.Active)
		assert.False(t, c.Deleted)
		assert.False(t, c.IsSystemAccount)
		assert.NotEqual(t, c.ID, c.CustomerGUID)
		assert.Equal(t, "fp-123", c.ClientFingerprint)
		assert.False(t, c.LastActivityAt.IsZero())

		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*CustomerCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("is a guest until registered", func(t *testing.T) {
		c := NewGuestCustomer("")
		assert.True(t, c.IsGuest())
		assert.False(t, c.IsRegistered())

		role, err := NewRole("Registered", RoleRegistered)
		require.NoError(t, err)
		c.Roles = append(c.Roles, role)

		assert.False(t, c.IsGuest())
		assert.True(t, c.IsRegistered())
	})

	t.Run("inactive registered role does not count", func(t *testing.T) {
		c := NewGuestCustomer("")
		role, err := NewRole("Registered", RoleRegistered)
		require.NoError(t, err)
		role.Active = false
		c.Roles = append(c.Roles, role)

		assert.True(t, c.IsGuest())
	})
}

func TestNewSystemCustomer(t *testing.T) {
	t.Run("creates system account", func(t *testing.T) {
		c, err := NewSystemCustomer(SystemNameSearchEngine)

		require.NoError(t, err)
		assert.True(t, c.IsSystemAccount)
		assert.True(t, c.IsSearchEngine())
		assert.False(t, c.IsGuest())
		assert.False(t, c.IsBackgroundTask())
	})

	t.Run("fails with empty system name", func(t *testing.T) {
		_, err := NewSystemCustomer("  ")
		assert.Error(t, err)
	})

	t.Run("fails with overlong system name", func(t *testing.T) {
		_, err := NewSystemCustomer(strings.Repeat("x", 101))
		assert.Error(t, err)
	})
}

func TestCustomerIsUsable(t *testing.T) {
	t.Run("active guest is usable", func(t *testing.T) {
		assert.True(t, NewGuestCustomer("").IsUsable())
	})

	t.Run("deactivated guest is not usable", func(t *testing.T) {
		c := NewGuestCustomer("")
		require.NoError(t, c.Deactivate())
		assert.False(t, c.IsUsable())
	})

	t.Run("deleted guest is not usable", func(t *testing.T) {
		c := NewGuestCustomer("")
		require.NoError(t, c.SoftDelete())
		assert.False(t, c.IsUsable())
	})

	t.Run("system account bypasses lifecycle checks", func(t *testing.T) {
		c, err := NewSystemCustomer(SystemNameBackgroundTask)
		require.NoError(t, err)
		require.NoError(t, c.Deactivate())
		assert.True(t, c.IsUsable())
	})
}

func TestCustomerSoftDelete(t *testing.T) {
	t.Run("rejects system accounts", func(t *testing.T) {
		c, err := NewSystemCustomer(SystemNameWebhook)
		require.NoError(t, err)

		derr := c.SoftDelete()
		var de *shared.DomainError
		require.ErrorAs(t, derr, &de)
		assert.Equal(t, "SYSTEM_ACCOUNT", de.Code)
	})
}

func TestCustomerRecordIPAddress(t *testing.T) {
	c := NewGuestCustomer("")
	c.RecordIPAddress(strings.Repeat("1", 60))
	assert.Len(t, c.LastIPAddress, MaxIPAddressLength)
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	c := NewGuestCustomer("")
	c.RecordIPAddress(strings.Repeat("ö", 60)) // 2 bytes per rune

	assert.True(t, utf8.ValidString(c.LastIPAddress))
	assert.LessOrEqual(t, len(c.LastIPAddress), MaxIPAddressLength)
}

func TestCustomerAttributes(t *testing.T) {
	t.Run("set and get round trip", func(t *testing.T) {
		c := NewGuestCustomer("")
		c.SetAttribute(AttrDeviceLabel, "mobile")

		v, ok := c.GetAttribute(AttrDeviceLabel)
		require.True(t, ok)
		assert.Equal(t, "mobile", v)
	})

	t.Run("set overwrites existing value", func(t *testing.T) {
		c := NewGuestCustomer("")
		c.SetAttribute(AttrDeviceLabel, "mobile")
		c.SetAttribute(AttrDeviceLabel, "desktop")

		v, _ := c.GetAttribute(AttrDeviceLabel)
		assert.Equal(t, "desktop", v)
		assert.Len(t, c.Attributes, 1)
	})

	t.Run("remove clears the attribute", func(t *testing.T) {
		c := NewGuestCustomer("")
		c.SetAttribute(AttrVatExempt, "true")
		c.RemoveAttribute(AttrVatExempt)

		_, ok := c.GetAttribute(AttrVatExempt)
		assert.False(t, ok)
	})

	t.Run("typed accessors reject malformed values", func(t *testing.T) {
		c := NewGuestCustomer("")
		c.SetAttribute(AttrTaxDisplayTypeID, "not-a-number")
		c.SetAttribute(AttrCurrencyID, "not-a-uuid")
		c.SetAttribute(AttrVatExempt, "maybe")

		_, ok := c.GetAttributeInt(AttrTaxDisplayTypeID)
		assert.False(t, ok)
		_, ok = c.GetAttributeUUID(AttrCurrencyID)
		assert.False(t, ok)
		assert.False(t, c.GetAttributeBool(AttrVatExempt))
	})
}
