package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/workcontext"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// WorkContextHandler serves the resolved request context and the customer
// preference mutations that feed back into resolution.
type WorkContextHandler struct {
	BaseHandler
	service *workcontext.Service
}

// NewWorkContextHandler creates a new work context handler
func NewWorkContextHandler(service *workcontext.Service) *WorkContextHandler {
	return &WorkContextHandler{service: service}
}

// RegisterRoutes registers work context routes
func (h *WorkContextHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/workcontext", h.GetCurrent)
	rg.PUT("/workcontext/currency", h.SetCurrency)
	rg.PUT("/workcontext/language", h.SetLanguage)
}

// GetCurrent returns the work context resolved by the middleware
func (h *WorkContextHandler) GetCurrent(c *gin.Context) {
	wc := middleware.GetWorkContext(c)
	if wc == nil {
		h.InternalError(c, "Request context was not resolved")
		return
	}
	h.Success(c, dto.NewWorkContextResponse(wc))
}

// SetCurrency persists the working customer's currency preference
func (h *WorkContextHandler) SetCurrency(c *gin.Context) {
	wc := middleware.GetWorkContext(c)
	if wc == nil {
		h.InternalError(c, "Request context was not resolved")
		return
	}

	var req dto.SetCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	currencyID, err := uuid.Parse(req.CurrencyID)
	if err != nil {
		h.BadRequest(c, "Invalid currency id")
		return
	}

	if err := h.service.Currencies().SetWorkingCurrency(c.Request.Context(), wc.Customer, currencyID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// SetLanguage persists the working customer's language preference
func (h *WorkContextHandler) SetLanguage(c *gin.Context) {
	wc := middleware.GetWorkContext(c)
	if wc == nil {
		h.InternalError(c, "Request context was not resolved")
		return
	}

	var req dto.SetLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	languageID, err := uuid.Parse(req.LanguageID)
	if err != nil {
		h.BadRequest(c, "Invalid language id")
		return
	}

	if err := h.service.Languages().SetWorkingLanguage(c.Request.Context(), wc.Customer, languageID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
