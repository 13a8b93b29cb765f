package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	directoryapp "github.com/storefront/backend/internal/application/directory"
	settingsapp "github.com/storefront/backend/internal/application/settings"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/tax"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AdminHandler serves the administrative mutations that feed back into
// resolution: role tax display overrides and the deployment default.
type AdminHandler struct {
	BaseHandler
	settings  *settingsapp.Service
	directory *directoryapp.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(settings *settingsapp.Service, directory *directoryapp.Service) *AdminHandler {
	return &AdminHandler{settings: settings, directory: directory}
}

// RegisterRoutes registers admin routes
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.PUT("/settings/tax-display", h.SetDefaultTaxDisplay)
	admin.PUT("/roles/:id/tax-display", h.SetRoleTaxDisplay)
}

// SetDefaultTaxDisplay writes the deployment default tax display type
func (h *AdminHandler) SetDefaultTaxDisplay(c *gin.Context) {
	if !h.requireAdministrator(c) {
		return
	}

	var req dto.SetDefaultTaxDisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.settings.SetDefaultTaxDisplayType(c.Request.Context(), tax.DisplayType(req.DisplayType)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// SetRoleTaxDisplay sets or clears a role's tax display override
func (h *AdminHandler) SetRoleTaxDisplay(c *gin.Context) {
	if !h.requireAdministrator(c) {
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid role id")
		return
	}

	var req dto.SetRoleTaxDisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	role, err := h.directory.RoleByID(c.Request.Context(), roleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.DisplayType == nil {
		role.ClearTaxDisplayType()
	} else if err := role.SetTaxDisplayType(tax.DisplayType(*req.DisplayType)); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.directory.SaveRole(c.Request.Context(), role); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// requireAdministrator gates admin routes on the working customer's role.
// Impersonation does not grant admin rights; the working customer decides.
func (h *AdminHandler) requireAdministrator(c *gin.Context) bool {
	wc := middleware.GetWorkContext(c)
	if wc == nil {
		h.InternalError(c, "Request context was not resolved")
		return false
	}
	if !wc.Customer.HasRoleSystemName(customer.RoleAdministrators) {
		h.Forbidden(c, "Administrator role required")
		return false
	}
	return true
}
