package stocktake

import (
	"context"
	"time"

	"gestock/internal/core/id"
	"gestock/internal/core/types"
)

// Repository defines persistence for stocktake documents.
type Repository interface {
	Create(ctx context.Context, doc *Stocktake) error
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error
	GetByID(ctx context.Context, docID id.ID) (*Stocktake, error)
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)

	// List returns documents newest first, optionally per warehouse.
	List(ctx context.Context, warehouseID *id.ID, limit, offset int) ([]Stocktake, error)
}

// Snapshot is one appended inventory count row, the raw material of
// anchoring. The article code is stored as counted; the reading side
// resolves it to a unit.
type Snapshot struct {
	ArticleCode string         `db:"article_code"`
	WarehouseID id.ID          `db:"warehouse_id"`
	Quantity    types.Quantity `db:"quantity"`
	TakenAt     time.Time      `db:"taken_at"`
}

// SnapshotWriter appends count snapshots. Append-only: snapshots are never
// updated or deleted, the latest timestamp wins on the reading side.
type SnapshotWriter interface {
	Append(ctx context.Context, snapshots []Snapshot) error
}
