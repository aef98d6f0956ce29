package warehouse

import (
	"context"

	"gestock/internal/core/id"
)

// Repository defines the interface for Warehouse persistence.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error
	GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error)

	// ListActive returns all warehouses without a deletion mark, ordered by code.
	ListActive(ctx context.Context) ([]Warehouse, error)
}
