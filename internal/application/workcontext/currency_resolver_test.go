package workcontext

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/settings"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCurrencyRepo is an in-memory CurrencyRepository.
type fakeCurrencyRepo struct {
	all     []*directory.Currency
	updates []*directory.Currency
}

func (f *fakeCurrencyRepo) Create(ctx context.Context, c *directory.Currency) error {
	f.all = append(f.all, c)
	return nil
}

func (f *fakeCurrencyRepo) Update(ctx context.Context, c *directory.Currency) error {
	f.updates = append(f.updates, c)
	return nil
}

func (f *fakeCurrencyRepo) FindByID(ctx context.Context, id uuid.UUID) (*directory.Currency, error) {
	for _, c := range f.all {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeCurrencyRepo) FindAll(ctx context.Context) ([]*directory.Currency, error) {
	return f.all, nil
}

// stubGeo answers every lookup with a fixed country.
type stubGeo struct {
	country *directory.Country
}

func (s stubGeo) LookupCountry(ctx context.Context, ip string) (*directory.Country, error) {
	return s.country, nil
}

// stubSettings is a static SettingsProvider.
type stubSettings struct {
	tax      settings.TaxSettings
	taxErr   error
	currency settings.CurrencySettings
}

func (s stubSettings) TaxSettings(ctx context.Context) (settings.TaxSettings, error) {
	return s.tax, s.taxErr
}

func (s stubSettings) CurrencySettings(ctx context.Context) (settings.CurrencySettings, error) {
	return s.currency, nil
}

func publishedCurrency(t *testing.T, name, code string) *directory.Currency {
	t.Helper()
	cur, err := directory.NewCurrency(name, code, decimal.NewFromInt(1))
	require.NoError(t, err)
	cur.Publish()
	return cur
}

func mainStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore("Main", "shop.example.com")
	require.NoError(t, err)
	return st
}

func newCurrencyTestResolver(repo directory.CurrencyRepository, geo GeoResolver, s SettingsProvider, dir CustomerDirectory) *CurrencyResolver {
	return NewCurrencyResolver(repo, geo, s, dir, zap.NewNop())
}

func TestResolveWorkingCurrency_SingleStoreCurrency(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur}}

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, new(MockCustomerDirectory))
	cur, err := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), activeGuest(), mainStore(t), false)

	require.NoError(t, err)
	assert.Same(t, eur, cur)
}

func TestResolveWorkingCurrency_StoredPreference(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	usd := publishedCurrency(t, "US Dollar", "USD")
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur, usd}}

	guest := activeGuest()
	guest.SetAttribute(customer.AttrCurrencyID, usd.ID.String())

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, new(MockCustomerDirectory))
	cur, err := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), guest, mainStore(t), false)

	require.NoError(t, err)
	assert.Same(t, usd, cur)
}

func TestResolveWorkingCurrency_StalePreferenceCleared(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	usd := publishedCurrency(t, "US Dollar", "USD")
	usd.Unpublish()
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur, usd}}

	guest := activeGuest()
	guest.SetAttribute(customer.AttrCurrencyID, usd.ID.String())

	dir := new(MockCustomerDirectory)
	dir.On("DeleteAttribute", mock.Anything, guest.ID, customer.AttrCurrencyID).Return(nil)

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, dir)
	cur, err := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), guest, mainStore(t), false)

	require.NoError(t, err)
	assert.Same(t, eur, cur)
	_, ok := guest.GetAttribute(customer.AttrCurrencyID)
	assert.False(t, ok, "stale preference must be removed from the record")
	dir.AssertExpectations(t)
}

func TestResolveWorkingCurrency_AdminAreaUsesPrimary(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	usd := publishedCurrency(t, "US Dollar", "USD")
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur, usd}}

	guest := activeGuest()
	guest.SetAttribute(customer.AttrCurrencyID, eur.ID.String())

	cfg := stubSettings{currency: settings.CurrencySettings{PrimaryCurrencyID: usd.ID}}
	resolver := newCurrencyTestResolver(repo, stubGeo{}, cfg, new(MockCustomerDirectory))
	cur, err := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), guest, mainStore(t), true)

	require.NoError(t, err)
	assert.Same(t, usd, cur)
}

func TestResolveWorkingCurrency_SearchEngineIgnoresPreference(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	usd := publishedCurrency(t, "US Dollar", "USD")
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur, usd}}

	bot, err := customer.NewSystemCustomer(customer.SystemNameSearchEngine)
	require.NoError(t, err)
	bot.SetAttribute(customer.AttrCurrencyID, usd.ID.String())

	dir := new(MockCustomerDirectory)
	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, dir)
	cur, rerr := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), bot, mainStore(t), false)

	require.NoError(t, rerr)
	assert.Same(t, eur, cur)
	dir.AssertNotCalled(t, "DeleteAttribute", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveWorkingCurrency_CountryDefault(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	usd := publishedCurrency(t, "US Dollar", "USD")
	repo := &fakeCurrencyRepo{all: []*directory.Currency{usd, eur}}

	country, err := directory.NewCountry("Germany", "DE")
	require.NoError(t, err)
	eurID := eur.ID
	country.DefaultCurrencyID = &eurID

	resolver := newCurrencyTestResolver(repo, stubGeo{country: country}, stubSettings{}, new(MockCustomerDirectory))
	cur, rerr := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), activeGuest(), mainStore(t), false)

	require.NoError(t, rerr)
	assert.Same(t, eur, cur)
}

func TestResolveWorkingCurrency_DomainEndingMatch(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	gbp := publishedCurrency(t, "Pound Sterling", "GBP")
	gbp.DomainEndings = ".co.uk,.uk"
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur, gbp}}

	req := anonymousRequest()
	req.Host = "shop.example.co.uk"

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, new(MockCustomerDirectory))
	cur, err := resolver.ResolveWorkingCurrency(context.Background(), req, activeGuest(), mainStore(t), false)

	require.NoError(t, err)
	assert.Same(t, gbp, cur)
}

func TestResolveWorkingCurrency_StoreDefault(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	usd := publishedCurrency(t, "US Dollar", "USD")
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur, usd}}

	st := mainStore(t)
	usdID := usd.ID
	st.DefaultCurrencyID = &usdID

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, new(MockCustomerDirectory))
	cur, err := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), activeGuest(), st, false)

	require.NoError(t, err)
	assert.Same(t, usd, cur)
}

func TestResolveWorkingCurrency_PrimaryFallback(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	usd := publishedCurrency(t, "US Dollar", "USD")
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur, usd}}

	cfg := stubSettings{currency: settings.CurrencySettings{PrimaryCurrencyID: usd.ID}}
	resolver := newCurrencyTestResolver(repo, stubGeo{}, cfg, new(MockCustomerDirectory))
	cur, err := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), activeGuest(), mainStore(t), false)

	require.NoError(t, err)
	assert.Same(t, usd, cur)
}

func TestResolveWorkingCurrency_PublishedOutsideStoreAsLastResort(t *testing.T) {
	other := uuid.New()
	eur := publishedCurrency(t, "Euro", "EUR")
	eur.LimitedToStores = true
	eur.StoreIDs = []uuid.UUID{other}
	usd := publishedCurrency(t, "US Dollar", "USD")
	usd.LimitedToStores = true
	usd.StoreIDs = []uuid.UUID{other}
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur, usd}}

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, new(MockCustomerDirectory))
	cur, err := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), activeGuest(), mainStore(t), false)

	require.NoError(t, err)
	assert.Same(t, eur, cur)
}

func TestResolveWorkingCurrency_SelfHealsUnpublishedDeployment(t *testing.T) {
	eur, err := directory.NewCurrency("Euro", "EUR", decimal.NewFromInt(1))
	require.NoError(t, err)
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur}}

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, new(MockCustomerDirectory))
	cur, rerr := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), activeGuest(), mainStore(t), false)

	require.NoError(t, rerr)
	require.Same(t, eur, cur)
	assert.True(t, cur.Published, "promoted currency must be published")
	require.Len(t, repo.updates, 1)
	assert.Same(t, eur, repo.updates[0])
}

func TestResolveWorkingCurrency_NoCurrencyConfigured(t *testing.T) {
	repo := &fakeCurrencyRepo{}

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, new(MockCustomerDirectory))
	cur, err := resolver.ResolveWorkingCurrency(context.Background(), anonymousRequest(), activeGuest(), mainStore(t), false)

	assert.Nil(t, cur)
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "NO_CURRENCY", derr.Code)
}

func TestSetWorkingCurrency(t *testing.T) {
	eur := publishedCurrency(t, "Euro", "EUR")
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur}}

	guest := activeGuest()
	dir := new(MockCustomerDirectory)
	dir.On("SaveAttribute", mock.Anything, guest.ID, customer.AttrCurrencyID, eur.ID.String()).Return(nil)

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, dir)
	require.NoError(t, resolver.SetWorkingCurrency(context.Background(), guest, eur.ID))

	stored, ok := guest.GetAttributeUUID(customer.AttrCurrencyID)
	require.True(t, ok)
	assert.Equal(t, eur.ID, stored)
	dir.AssertExpectations(t)
}

func TestSetWorkingCurrency_RejectsUnpublished(t *testing.T) {
	eur, err := directory.NewCurrency("Euro", "EUR", decimal.NewFromInt(1))
	require.NoError(t, err)
	repo := &fakeCurrencyRepo{all: []*directory.Currency{eur}}

	guest := activeGuest()
	dir := new(MockCustomerDirectory)

	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, dir)
	serr := resolver.SetWorkingCurrency(context.Background(), guest, eur.ID)

	var derr *shared.DomainError
	require.ErrorAs(t, serr, &derr)
	assert.Equal(t, "CURRENCY_NOT_PUBLISHED", derr.Code)
	dir.AssertNotCalled(t, "SaveAttribute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	_, ok := guest.GetAttribute(customer.AttrCurrencyID)
	assert.False(t, ok)
}

func TestSetWorkingCurrency_UnknownCurrency(t *testing.T) {
	repo := &fakeCurrencyRepo{}
	resolver := newCurrencyTestResolver(repo, stubGeo{}, stubSettings{}, new(MockCustomerDirectory))

	err := resolver.SetWorkingCurrency(context.Background(), activeGuest(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
