// Package warehouse provides the Warehouse catalog.
package warehouse

import (
	"context"

	"gestock/internal/core/entity"
)

// Warehouse represents a physical storage site. All stock is scoped to one.
type Warehouse struct {
	entity.Catalog

	// Location is a free-form address or site note
	Location *string `db:"location" json:"location,omitempty"`
}

// NewWarehouse creates a new Warehouse with required fields.
func NewWarehouse(code, designation string) *Warehouse {
	return &Warehouse{
		Catalog: entity.NewCatalog(code, designation),
	}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(ctx context.Context) error {
	return w.Catalog.Validate(ctx)
}
