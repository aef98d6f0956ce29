package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gestock/internal/core/id"
	"gestock/internal/domain/stock"
	"gestock/internal/domain/stocktake"
	"gestock/internal/infrastructure/storage/postgres"
)

const snapshotTable = "reg_count_snapshots"

// SnapshotRepo reads and appends physical count snapshots. It implements
// stock.AnchorSource for the resolver and stocktake.SnapshotWriter for the
// count document service.
//
// Snapshots store the counted article code verbatim; reads resolve the code
// to a unit by joining the unit catalog. The join does not filter deletion
// marks: a count against a since-deleted unit must still surface, so the
// resolver can reject it instead of silently ignoring the count.
type SnapshotRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSnapshotRepo creates the snapshot repository.
func NewSnapshotRepo(txm *postgres.TxManager) *SnapshotRepo {
	return &SnapshotRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var (
	_ stock.AnchorSource       = (*SnapshotRepo)(nil)
	_ stocktake.SnapshotWriter = (*SnapshotRepo)(nil)
)

const latestSQL = `
	SELECT u.article_id, s.warehouse_id, u.id AS unit_id, s.quantity, s.taken_at
	FROM reg_count_snapshots s
	JOIN cat_units u ON u.article_code = s.article_code
	WHERE u.article_id = $1 AND s.warehouse_id = $2
	ORDER BY s.taken_at DESC
	LIMIT 1
`

// Latest returns the most recent count for the pair, or nil when the pair has
// never been counted.
func (r *SnapshotRepo) Latest(ctx context.Context, articleID, warehouseID id.ID) (*stock.Anchor, error) {
	var anchor stock.Anchor
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &anchor, latestSQL, articleID, warehouseID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return &anchor, nil
}

// LatestAll returns the latest count of every (article, warehouse) pair,
// optionally restricted to one warehouse.
func (r *SnapshotRepo) LatestAll(ctx context.Context, warehouseID *id.ID) ([]stock.Anchor, error) {
	sql := `
	SELECT DISTINCT ON (u.article_id, s.warehouse_id)
		u.article_id, s.warehouse_id, u.id AS unit_id, s.quantity, s.taken_at
	FROM reg_count_snapshots s
	JOIN cat_units u ON u.article_code = s.article_code
	`
	var args []any
	if warehouseID != nil {
		sql += "WHERE s.warehouse_id = $1\n"
		args = append(args, *warehouseID)
	}
	sql += "ORDER BY u.article_id, s.warehouse_id, s.taken_at DESC"

	var anchors []stock.Anchor
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &anchors, sql, args...); err != nil {
		return nil, fmt.Errorf("latest snapshots: %w", err)
	}
	return anchors, nil
}

// Append inserts count snapshots. Append-only: rows are never updated or
// deleted, the reading side picks the latest taken_at.
func (r *SnapshotRepo) Append(ctx context.Context, snapshots []stocktake.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	q := r.builder.Insert(snapshotTable).
		Columns("article_code", "warehouse_id", "quantity", "taken_at")
	for _, s := range snapshots {
		q = q.Values(s.ArticleCode, s.WarehouseID, s.Quantity, s.TakenAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert snapshots: %w", err)
	}

	return nil
}
