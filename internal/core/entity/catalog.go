package entity

import (
	"context"

	"gestock/internal/core/apperror"
)

// Catalog is the base type for reference data (articles, units, warehouses).
type Catalog struct {
	BaseEntity

	// Code is a human-readable identifier, unique per catalog
	Code string `db:"code" json:"code"`

	// Designation is the display name
	Designation string `db:"designation" json:"designation"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, designation string) Catalog {
	return Catalog{
		BaseEntity:  NewBaseEntity(),
		Code:        code,
		Designation: designation,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Designation == "" {
		return apperror.NewValidation("designation is required").
			WithDetail("field", "designation")
	}

	return nil
}
