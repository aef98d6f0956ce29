package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs/warehouse"
	"gestock/internal/infrastructure/storage/postgres"
)

const warehouseTable = "cat_warehouses"

var warehouseCols = []string{
	"id", "deletion_mark", "version",
	"code", "designation", "location",
}

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txm *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ warehouse.Repository = (*WarehouseRepo)(nil)

// Create inserts a new warehouse.
func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	q := r.builder.Insert(warehouseTable).
		Columns(warehouseCols...).
		Values(w.ID, w.DeletionMark, w.Version, w.Code, w.Designation, w.Location)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", warehouseTable, err)
	}

	return nil
}

// GetByID retrieves a warehouse by ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseCols...).
		From(warehouseTable).
		Where(squirrel.Eq{"id": warehouseID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w warehouse.Warehouse
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(warehouseTable, warehouseID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &w, nil
}

// ListActive returns all warehouses without a deletion mark, ordered by code.
func (r *WarehouseRepo) ListActive(ctx context.Context) ([]warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseCols...).
		From(warehouseTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var warehouses []warehouse.Warehouse
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &warehouses, sql, args...); err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}

	return warehouses, nil
}
