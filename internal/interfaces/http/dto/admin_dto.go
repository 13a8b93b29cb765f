package dto

// SetDefaultTaxDisplayRequest sets the deployment default tax display type
type SetDefaultTaxDisplayRequest struct {
	DisplayType int `json:"display_type" binding:"oneof=0 10"`
}

// SetRoleTaxDisplayRequest sets or clears a role's tax display override.
// A null display_type clears the override.
type SetRoleTaxDisplayRequest struct {
	DisplayType *int `json:"display_type" binding:"omitempty,oneof=0 10"`
}
