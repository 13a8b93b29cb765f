package workcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/settings"
)

// CustomerDirectory is the lookup/create contract the pipeline consumes.
// Implementations load roles and attributes together with the customer.
type CustomerDirectory interface {
	// FindBySystemName returns the system account with the given name
	FindBySystemName(ctx context.Context, systemName string) (*customer.Customer, error)

	// FindByGUID returns the customer with the given public GUID
	FindByGUID(ctx context.Context, guid uuid.UUID) (*customer.Customer, error)

	// FindByFingerprint returns the freshest customer seen for the client
	// fingerprint within maxAge
	FindByFingerprint(ctx context.Context, fingerprint string, maxAge time.Duration) (*customer.Customer, error)

	// CreateGuest provisions a new guest record for the fingerprint. The seed
	// callback populates best-effort telemetry; failures to persist seeded
	// attributes must not fail the creation.
	CreateGuest(ctx context.Context, fingerprint string, seed func(*customer.Customer)) (*customer.Customer, error)

	// Authenticated returns the customer for the authenticated principal
	// attached to ctx, or nil when the request is anonymous
	Authenticated(ctx context.Context) (*customer.Customer, error)

	// EnsureSystemAccount returns the system account with the given name,
	// creating it on first sight
	EnsureSystemAccount(ctx context.Context, systemName string) (*customer.Customer, error)

	// SaveAttribute persists a generic attribute for a customer
	SaveAttribute(ctx context.Context, customerID uuid.UUID, key, value string) error

	// DeleteAttribute removes a generic attribute from a customer
	DeleteAttribute(ctx context.Context, customerID uuid.UUID, key string) error
}

// UserAgentInspector classifies inbound user-agent strings.
type UserAgentInspector interface {
	// IsBot reports whether the user agent belongs to a known crawler
	IsBot(userAgent string) bool

	// DeviceLabel returns a short device classification for telemetry
	DeviceLabel(userAgent string) string
}

// OverloadPolicy delivers traffic-shedding verdicts. Verdicts are consulted
// at most once per request by way of DetectionContext memoization and are
// never consulted for internal sub-requests.
type OverloadPolicy interface {
	// ForbidNewGuest reports whether creation of new guest records is blocked
	ForbidNewGuest(ctx context.Context, req *Request) bool

	// DenyGuest reports whether existing guest traffic is shed
	DenyGuest(ctx context.Context, req *Request, c *customer.Customer) bool

	// DenyBot reports whether bot traffic is shed
	DenyBot(ctx context.Context, req *Request, userAgent string) bool
}

// LockHandle is a held named lock. Release is idempotent at the call site:
// the pipeline guarantees it is invoked exactly once.
type LockHandle interface {
	Release(ctx context.Context) error
}

// LockProvider grants named, TTL-bound mutual exclusion across processes.
type LockProvider interface {
	// TryAcquire attempts to take the named lock, giving up after timeout.
	// A nil handle with nil error means the acquisition timed out.
	TryAcquire(ctx context.Context, key string, timeout time.Duration) (LockHandle, error)
}

// ContextCache is a get-or-compute cache with pattern invalidation. A cache
// miss computes the value at most effectively once per key.
type ContextCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) (any, error)
	InvalidateByPattern(ctx context.Context, pattern string) error
}

// GeoResolver maps a caller address to a country, or nil when unknown.
type GeoResolver interface {
	LookupCountry(ctx context.Context, ip string) (*directory.Country, error)
}

// SettingsProvider exposes typed views over the deployment settings store.
type SettingsProvider interface {
	TaxSettings(ctx context.Context) (settings.TaxSettings, error)
	CurrencySettings(ctx context.Context) (settings.CurrencySettings, error)
}
