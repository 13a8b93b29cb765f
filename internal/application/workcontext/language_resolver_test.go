package workcontext

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLanguageRepo is an in-memory LanguageRepository.
type fakeLanguageRepo struct {
	all []*directory.Language
}

func (f *fakeLanguageRepo) Create(ctx context.Context, l *directory.Language) error {
	f.all = append(f.all, l)
	return nil
}

func (f *fakeLanguageRepo) FindByID(ctx context.Context, id uuid.UUID) (*directory.Language, error) {
	for _, l := range f.all {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeLanguageRepo) FindAllPublished(ctx context.Context) ([]*directory.Language, error) {
	out := make([]*directory.Language, 0, len(f.all))
	for _, l := range f.all {
		if l.Published {
			out = append(out, l)
		}
	}
	return out, nil
}

func testLanguage(t *testing.T, name, culture string) *directory.Language {
	t.Helper()
	l, err := directory.NewLanguage(name, culture)
	require.NoError(t, err)
	return l
}

func newLanguageTestResolver(repo directory.LanguageRepository, dir CustomerDirectory) *LanguageResolver {
	return NewLanguageResolver(repo, dir, zap.NewNop())
}

func TestResolveWorkingLanguage_StoredPreference(t *testing.T) {
	en := testLanguage(t, "English", "en-US")
	de := testLanguage(t, "German", "de-DE")
	repo := &fakeLanguageRepo{all: []*directory.Language{en, de}}

	guest := activeGuest()
	guest.SetAttribute(customer.AttrLanguageID, de.ID.String())

	resolver := newLanguageTestResolver(repo, new(MockCustomerDirectory))
	lang, err := resolver.ResolveWorkingLanguage(context.Background(), guest, mainStore(t), "en-US")

	require.NoError(t, err)
	assert.Same(t, de, lang)
}

func TestResolveWorkingLanguage_PreferenceUnavailableForStore(t *testing.T) {
	en := testLanguage(t, "English", "en-US")
	de := testLanguage(t, "German", "de-DE")
	de.LimitedToStores = true
	de.StoreIDs = []uuid.UUID{uuid.New()}
	repo := &fakeLanguageRepo{all: []*directory.Language{en, de}}

	guest := activeGuest()
	guest.SetAttribute(customer.AttrLanguageID, de.ID.String())

	resolver := newLanguageTestResolver(repo, new(MockCustomerDirectory))
	lang, err := resolver.ResolveWorkingLanguage(context.Background(), guest, mainStore(t), "")

	require.NoError(t, err)
	assert.Same(t, en, lang)
}

func TestResolveWorkingLanguage_AcceptLanguageNegotiation(t *testing.T) {
	en := testLanguage(t, "English", "en-US")
	de := testLanguage(t, "German", "de-DE")
	repo := &fakeLanguageRepo{all: []*directory.Language{en, de}}

	resolver := newLanguageTestResolver(repo, new(MockCustomerDirectory))
	lang, err := resolver.ResolveWorkingLanguage(context.Background(), activeGuest(), mainStore(t), "de-DE,de;q=0.9,en;q=0.5")

	require.NoError(t, err)
	assert.Same(t, de, lang)
}

func TestResolveWorkingLanguage_MalformedHeaderFallsThrough(t *testing.T) {
	en := testLanguage(t, "English", "en-US")
	de := testLanguage(t, "German", "de-DE")
	repo := &fakeLanguageRepo{all: []*directory.Language{en, de}}

	resolver := newLanguageTestResolver(repo, new(MockCustomerDirectory))
	lang, err := resolver.ResolveWorkingLanguage(context.Background(), activeGuest(), mainStore(t), ";;;q=zzz")

	require.NoError(t, err)
	assert.Same(t, en, lang)
}

func TestResolveWorkingLanguage_MalformedCultureSkipped(t *testing.T) {
	bad := testLanguage(t, "Broken", "not a tag!")
	en := testLanguage(t, "English", "en-US")
	repo := &fakeLanguageRepo{all: []*directory.Language{bad, en}}

	resolver := newLanguageTestResolver(repo, new(MockCustomerDirectory))
	lang, err := resolver.ResolveWorkingLanguage(context.Background(), activeGuest(), mainStore(t), "en-US")

	require.NoError(t, err)
	assert.Same(t, en, lang)
}

func TestResolveWorkingLanguage_StoreDefault(t *testing.T) {
	en := testLanguage(t, "English", "en-US")
	de := testLanguage(t, "German", "de-DE")
	repo := &fakeLanguageRepo{all: []*directory.Language{en, de}}

	st := mainStore(t)
	deID := de.ID
	st.DefaultLanguageID = &deID

	resolver := newLanguageTestResolver(repo, new(MockCustomerDirectory))
	lang, err := resolver.ResolveWorkingLanguage(context.Background(), activeGuest(), st, "")

	require.NoError(t, err)
	assert.Same(t, de, lang)
}

func TestResolveWorkingLanguage_FirstAvailableFallback(t *testing.T) {
	en := testLanguage(t, "English", "en-US")
	de := testLanguage(t, "German", "de-DE")
	repo := &fakeLanguageRepo{all: []*directory.Language{en, de}}

	resolver := newLanguageTestResolver(repo, new(MockCustomerDirectory))
	lang, err := resolver.ResolveWorkingLanguage(context.Background(), activeGuest(), mainStore(t), "")

	require.NoError(t, err)
	assert.Same(t, en, lang)
}

func TestResolveWorkingLanguage_NoLanguageConfigured(t *testing.T) {
	resolver := newLanguageTestResolver(&fakeLanguageRepo{}, new(MockCustomerDirectory))
	lang, err := resolver.ResolveWorkingLanguage(context.Background(), activeGuest(), mainStore(t), "")

	assert.Nil(t, lang)
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "NO_LANGUAGE", derr.Code)
}

func TestSetWorkingLanguage(t *testing.T) {
	en := testLanguage(t, "English", "en-US")
	repo := &fakeLanguageRepo{all: []*directory.Language{en}}

	guest := activeGuest()
	dir := new(MockCustomerDirectory)
	dir.On("SaveAttribute", mock.Anything, guest.ID, customer.AttrLanguageID, en.ID.String()).Return(nil)

	resolver := newLanguageTestResolver(repo, dir)
	require.NoError(t, resolver.SetWorkingLanguage(context.Background(), guest, en.ID))

	stored, ok := guest.GetAttributeUUID(customer.AttrLanguageID)
	require.True(t, ok)
	assert.Equal(t, en.ID, stored)
	dir.AssertExpectations(t)
}

func TestSetWorkingLanguage_RejectsUnpublished(t *testing.T) {
	en := testLanguage(t, "English", "en-US")
	en.Published = false
	repo := &fakeLanguageRepo{all: []*directory.Language{en}}

	guest := activeGuest()
	dir := new(MockCustomerDirectory)

	resolver := newLanguageTestResolver(repo, dir)
	err := resolver.SetWorkingLanguage(context.Background(), guest, en.ID)

	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "LANGUAGE_NOT_PUBLISHED", derr.Code)
	dir.AssertNotCalled(t, "SaveAttribute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
