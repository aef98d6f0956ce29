package warehouse

import (
	"context"
	"fmt"

	"gestock/internal/core/id"
	"gestock/pkg/logger"
)

// Service provides business logic for the Warehouse catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Warehouse service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new warehouse.
func (s *Service) Create(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return fmt.Errorf("create warehouse: %w", err)
	}

	logger.Info(ctx, "warehouse created", "id", w.ID, "code", w.Code)
	return nil
}

// GetByID retrieves a warehouse by id.
func (s *Service) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// ListActive returns all non-deleted warehouses.
func (s *Service) ListActive(ctx context.Context) ([]Warehouse, error) {
	return s.repo.ListActive(ctx)
}
