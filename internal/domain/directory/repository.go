package directory

import (
	"context"

	"github.com/google/uuid"
)

// CurrencyRepository defines the interface for currency persistence
type CurrencyRepository interface {
	// Create creates a new currency
	Create(ctx context.Context, c *Currency) error

	// Update updates an existing currency
	Update(ctx context.Context, c *Currency) error

	// FindByID finds a currency by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Currency, error)

	// FindAll returns all currencies ordered by display order,
	// regardless of published state
	FindAll(ctx context.Context) ([]*Currency, error)
}

// CountryRepository defines the interface for country persistence
type CountryRepository interface {
	// Create creates a new country
	Create(ctx context.Context, c *Country) error

	// FindByID finds a country by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Country, error)

	// FindByISOCode finds a country by its two-letter ISO code
	FindByISOCode(ctx context.Context, code string) (*Country, error)
}

// LanguageRepository defines the interface for language persistence
type LanguageRepository interface {
	// Create creates a new language
	Create(ctx context.Context, l *Language) error

	// FindByID finds a language by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Language, error)

	// FindAllPublished returns all published languages ordered by display order
	FindAllPublished(ctx context.Context) ([]*Language, error)
}
