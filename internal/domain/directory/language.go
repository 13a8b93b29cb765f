package directory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Language represents a storefront display language.
type Language struct {
	shared.BaseAggregateRoot
	Name            string
	LanguageCulture string // BCP 47 tag, e.g. "en-US"
	Published       bool
	DisplayOrder    int
	LimitedToStores bool
	StoreIDs        []uuid.UUID
}

// NewLanguage creates a new language
func NewLanguage(name, culture string) (*Language, error) {
	name = strings.TrimSpace(name)
	culture = strings.TrimSpace(culture)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_LANGUAGE_NAME", "Language name cannot be empty")
	}
	if culture == "" {
		return nil, shared.NewDomainError("INVALID_LANGUAGE_CULTURE", "Language culture cannot be empty")
	}

	return &Language{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		LanguageCulture:   culture,
		Published:         true,
		StoreIDs:          make([]uuid.UUID, 0),
	}, nil
}

// AvailableForStore reports whether the language can be used on the store.
func (l *Language) AvailableForStore(storeID uuid.UUID) bool {
	if !l.LimitedToStores {
		return true
	}
	for _, id := range l.StoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}
