package dto

import (
	"github.com/storefront/backend/internal/application/workcontext"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
)

// WorkContextResponse is the resolved request context returned to clients
type WorkContextResponse struct {
	Customer     CustomerView  `json:"customer"`
	Impersonator *CustomerView `json:"impersonator,omitempty"`
	Store        StoreView     `json:"store"`
	Currency     CurrencyView  `json:"currency"`
	Language     *LanguageView `json:"language,omitempty"`
	TaxDisplay   string        `json:"tax_display"`
}

// CustomerView is the public projection of a resolved customer
type CustomerView struct {
	GUID            string   `json:"guid"`
	Email           string   `json:"email,omitempty"`
	Username        string   `json:"username,omitempty"`
	IsGuest         bool     `json:"is_guest"`
	IsRegistered    bool     `json:"is_registered"`
	IsSystemAccount bool     `json:"is_system_account"`
	SystemName      string   `json:"system_name,omitempty"`
	Roles           []string `json:"roles"`
}

// StoreView identifies the store serving the request
type StoreView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Host string `json:"host"`
}

// CurrencyView describes the working currency
type CurrencyView struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Rate          string `json:"rate"`
	DisplayLocale string `json:"display_locale,omitempty"`
}

// LanguageView describes the working language
type LanguageView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Culture string `json:"culture"`
}

// SetCurrencyRequest selects the working currency
type SetCurrencyRequest struct {
	CurrencyID string `json:"currency_id" binding:"required,uuid"`
}

// SetLanguageRequest selects the working language
type SetLanguageRequest struct {
	LanguageID string `json:"language_id" binding:"required,uuid"`
}

// NewWorkContextResponse converts a resolved work context to its API view
func NewWorkContextResponse(wc *workcontext.WorkContext) WorkContextResponse {
	resp := WorkContextResponse{
		Customer: newCustomerView(wc.Customer),
		Store: StoreView{
			ID:   wc.Store.ID.String(),
			Name: wc.Store.Name,
			Host: wc.Store.HostName,
		},
		Currency:   newCurrencyView(wc.Currency),
		TaxDisplay: wc.TaxDisplay.String(),
	}
	if wc.Impersonator != nil {
		v := newCustomerView(wc.Impersonator)
		resp.Impersonator = &v
	}
	if wc.Language != nil {
		resp.Language = &LanguageView{
			ID:      wc.Language.ID.String(),
			Name:    wc.Language.Name,
			Culture: wc.Language.LanguageCulture,
		}
	}
	return resp
}

func newCustomerView(c *customer.Customer) CustomerView {
	roles := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		if r.Active {
			roles = append(roles, r.SystemName)
		}
	}
	return CustomerView{
		GUID:            c.CustomerGUID.String(),
		Email:           c.Email,
		Username:        c.Username,
		IsGuest:         c.IsGuest(),
		IsRegistered:    c.IsRegistered(),
		IsSystemAccount: c.IsSystemAccount,
		SystemName:      c.SystemName,
		Roles:           roles,
	}
}

func newCurrencyView(c *directory.Currency) CurrencyView {
	return CurrencyView{
		ID:            c.ID.String(),
		Code:          c.CurrencyCode,
		Name:          c.Name,
		Rate:          c.Rate.String(),
		DisplayLocale: c.DisplayLocale,
	}
}
