package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDatabase opens an in-memory SQLite database with the full schema
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewSQLiteDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGormCustomerRepository_CreateAndFind(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCustomerRepository(db.DB)
	ctx := context.Background()

	guest := customer.NewGuestCustomer("fp-abc")
	guest.RecordIPAddress("203.0.113.9")
	require.NoError(t, repo.Create(ctx, guest))

	t.Run("by ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, guest.ID)
		require.NoError(t, err)
		assert.Equal(t, guest.CustomerGUID, found.CustomerGUID)
		assert.Equal(t, "fp-abc", found.ClientFingerprint)
		assert.Equal(t, "203.0.113.9", found.LastIPAddress)
	})

	t.Run("by GUID", func(t *testing.T) {
		found, err := repo.FindByGUID(ctx, guest.CustomerGUID)
		require.NoError(t, err)
		assert.Equal(t, guest.ID, found.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByGUID(ctx, customer.NewGuestCustomer("").CustomerGUID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCustomerRepository_FindBySystemName(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCustomerRepository(db.DB)
	ctx := context.Background()

	bot, err := customer.NewSystemCustomer(customer.SystemNameSearchEngine)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, bot))

	found, err := repo.FindBySystemName(ctx, customer.SystemNameSearchEngine)
	require.NoError(t, err)
	assert.True(t, found.IsSystemAccount)
	assert.Equal(t, customer.SystemNameSearchEngine, found.SystemName)

	_, err = repo.FindBySystemName(ctx, customer.SystemNameWebhook)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCustomerRepository_FindByFingerprint(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCustomerRepository(db.DB)
	ctx := context.Background()

	fresh := customer.NewGuestCustomer("fp-shared")
	require.NoError(t, repo.Create(ctx, fresh))

	stale := customer.NewGuestCustomer("fp-stale")
	stale.LastActivityAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, stale))

	t.Run("fresh match within window", func(t *testing.T) {
		found, err := repo.FindByFingerprint(ctx, "fp-shared", 300*time.Second)
		require.NoError(t, err)
		assert.Equal(t, fresh.ID, found.ID)
	})

	t.Run("stale record outside window", func(t *testing.T) {
		_, err := repo.FindByFingerprint(ctx, "fp-stale", 300*time.Second)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("empty fingerprint never matches", func(t *testing.T) {
		_, err := repo.FindByFingerprint(ctx, "", time.Hour)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCustomerRepository_RolesAndAttributes(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCustomerRepository(db.DB)
	roleRepo := NewGormRoleRepository(db.DB)
	ctx := context.Background()

	role, err := customer.NewRole("Guests", customer.RoleGuests)
	require.NoError(t, err)
	require.NoError(t, roleRepo.Create(ctx, role))

	guest := customer.NewGuestCustomer("fp-roles")
	require.NoError(t, repo.Create(ctx, guest))
	require.NoError(t, repo.AddToRole(ctx, guest.ID, role.ID))

	// AddToRole is idempotent.
	require.NoError(t, repo.AddToRole(ctx, guest.ID, role.ID))

	require.NoError(t, repo.SaveAttribute(ctx, guest.ID, customer.AttrDeviceLabel, "mobile"))
	require.NoError(t, repo.SaveAttribute(ctx, guest.ID, customer.AttrDeviceLabel, "tablet"))

	found, err := repo.FindByID(ctx, guest.ID)
	require.NoError(t, err)

	require.Len(t, found.Roles, 1)
	assert.Equal(t, customer.RoleGuests, found.Roles[0].SystemName)

	label, ok := found.GetAttribute(customer.AttrDeviceLabel)
	require.True(t, ok)
	assert.Equal(t, "tablet", label)

	require.NoError(t, repo.DeleteAttribute(ctx, guest.ID, customer.AttrDeviceLabel))
	found, err = repo.FindByID(ctx, guest.ID)
	require.NoError(t, err)
	_, ok = found.GetAttribute(customer.AttrDeviceLabel)
	assert.False(t, ok)
}

func TestGormCustomerRepository_PurgeGuests(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCustomerRepository(db.DB)
	roleRepo := NewGormRoleRepository(db.DB)
	ctx := context.Background()

	registered, err := customer.NewRole("Registered", customer.RoleRegistered)
	require.NoError(t, err)
	require.NoError(t, roleRepo.Create(ctx, registered))

	abandoned := customer.NewGuestCustomer("fp-old")
	abandoned.LastActivityAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, abandoned))
	require.NoError(t, repo.SaveAttribute(ctx, abandoned.ID, customer.AttrUserAgent, "old-agent"))

	active := customer.NewGuestCustomer("fp-live")
	require.NoError(t, repo.Create(ctx, active))

	account := customer.NewGuestCustomer("fp-account")
	account.LastActivityAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, account))
	require.NoError(t, repo.AddToRole(ctx, account.ID, registered.ID))

	system, err := customer.NewSystemCustomer(customer.SystemNameBackgroundTask)
	require.NoError(t, err)
	system.LastActivityAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, system))

	purged, err := repo.PurgeGuests(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.FindByID(ctx, abandoned.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	for _, keep := range []*customer.Customer{active, account, system} {
		_, err := repo.FindByID(ctx, keep.ID)
		assert.NoError(t, err)
	}
}

func TestGormCustomerRepository_UpdateOptimisticLocking(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCustomerRepository(db.DB)
	ctx := context.Background()

	guest := customer.NewGuestCustomer("fp-ver")
	require.NoError(t, repo.Create(ctx, guest))

	guest.Touch()
	require.NoError(t, repo.Update(ctx, guest))

	// A second writer holding the old version must fail.
	stale := customer.NewGuestCustomer("fp-ver")
	stale.BaseAggregateRoot = guest.BaseAggregateRoot
	stale.Version = guest.Version - 1
	stale.CustomerGUID = guest.CustomerGUID
	err := repo.Update(ctx, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}
