package workcontext

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/store"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// LanguageResolver resolves the working display language for a request:
// stored customer preference, then Accept-Language negotiation against the
// store's published languages, then the store default.
type LanguageResolver struct {
	languages directory.LanguageRepository
	directory CustomerDirectory
	logger    *zap.Logger
}

// NewLanguageResolver creates a new language resolver
func NewLanguageResolver(languages directory.LanguageRepository, dir CustomerDirectory, logger *zap.Logger) *LanguageResolver {
	return &LanguageResolver{
		languages: languages,
		directory: dir,
		logger:    logger,
	}
}

// ResolveWorkingLanguage resolves the language for the customer on the
// given store. acceptLanguage is the raw Accept-Language header value.
func (s *LanguageResolver) ResolveWorkingLanguage(ctx context.Context, c *customer.Customer, st *store.Store, acceptLanguage string) (*directory.Language, error) {
	published, err := s.languages.FindAllPublished(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]*directory.Language, 0, len(published))
	for _, l := range published {
		if l.AvailableForStore(st.ID) {
			available = append(available, l)
		}
	}
	if len(available) == 0 {
		return nil, shared.NewDomainError("NO_LANGUAGE", "No published language is available for this store")
	}

	if prefID, ok := c.GetAttributeUUID(customer.AttrLanguageID); ok {
		for _, l := range available {
			if l.ID == prefID {
				return l, nil
			}
		}
	}

	if l := matchAcceptLanguage(available, acceptLanguage); l != nil {
		return l, nil
	}

	if st.DefaultLanguageID != nil {
		for _, l := range available {
			if l.ID == *st.DefaultLanguageID {
				return l, nil
			}
		}
	}

	return available[0], nil
}

// SetWorkingLanguage persists the customer's language preference.
func (s *LanguageResolver) SetWorkingLanguage(ctx context.Context, c *customer.Customer, languageID uuid.UUID) error {
	l, err := s.languages.FindByID(ctx, languageID)
	if err != nil {
		return err
	}
	if !l.Published {
		return shared.NewDomainError("LANGUAGE_NOT_PUBLISHED", "Language is not published")
	}

	c.SetAttribute(customer.AttrLanguageID, languageID.String())
	return s.directory.SaveAttribute(ctx, c.ID, customer.AttrLanguageID, languageID.String())
}

// matchAcceptLanguage negotiates the header against the available language
// cultures. Malformed tags are ignored.
func matchAcceptLanguage(available []*directory.Language, header string) *directory.Language {
	if header == "" {
		return nil
	}

	tags := make([]language.Tag, 0, len(available))
	indexed := make([]*directory.Language, 0, len(available))
	for _, l := range available {
		tag, err := language.Parse(l.LanguageCulture)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		indexed = append(indexed, l)
	}
	if len(tags) == 0 {
		return nil
	}

	wanted, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(wanted) == 0 {
		return nil
	}

	matcher := language.NewMatcher(tags)
	_, idx, conf := matcher.Match(wanted...)
	if conf == language.No {
		return nil
	}
	return indexed[idx]
}
