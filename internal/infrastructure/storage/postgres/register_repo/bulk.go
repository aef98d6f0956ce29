package register_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"

	"gestock/internal/core/id"
	"gestock/internal/domain/stock"
	"gestock/internal/infrastructure/storage/postgres"
)

// kindTables maps each movement kind to its table and warehouse column. The
// two transfer legs read the same table through different columns.
var kindTables = map[stock.Kind]struct {
	table        string
	warehouseCol string
}{
	stock.KindReception:   {receptionTable, "warehouse_id"},
	stock.KindSale:        {saleTable, "warehouse_id"},
	stock.KindOutbound:    {outboundTable, "warehouse_id"},
	stock.KindTransferIn:  {transferTable, "dest_warehouse_id"},
	stock.KindTransferOut: {transferTable, "source_warehouse_id"},
	stock.KindReturn:      {returnTable, "warehouse_id"},
	stock.KindAdjustment:  {adjustmentTable, "warehouse_id"},
}

// BulkRepo implements stock.BulkSource with one grouped aggregation query.
type BulkRepo struct {
	txm *postgres.TxManager
}

// NewBulkRepo creates the bulk movement aggregator.
func NewBulkRepo(txm *postgres.TxManager) *BulkRepo {
	return &BulkRepo{txm: txm}
}

var _ stock.BulkSource = (*BulkRepo)(nil)

// SignedTotals returns the signed per-(article, unit, warehouse) sums across
// every movement kind in a single round trip.
//
// Warehouse-scoped calls apply the anchor cutoff: events at or before the
// article's latest physical count in that warehouse are excluded, because the
// count already contains them. Company-wide calls have no cutoff and collapse
// all warehouses into one zero-id group, so transfer legs cancel out.
func (r *BulkRepo) SignedTotals(ctx context.Context, warehouseID *id.ID) ([]stock.SignedTotal, error) {
	var (
		sql  string
		args []any
	)
	if warehouseID != nil {
		sql = scopedTotalsSQL()
		args = []any{*warehouseID}
	} else {
		sql = companyTotalsSQL()
	}

	var totals []stock.SignedTotal
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &totals, sql, args...); err != nil {
		return nil, fmt.Errorf("signed totals: %w", err)
	}

	return totals, nil
}

// eventsUnion builds the UNION ALL over all movement tables. The sign comes
// from the kind's sign table so this query can never disagree with the
// single-article path.
func eventsUnion(scoped bool) string {
	parts := make([]string, 0, len(kindTables))
	for _, k := range stock.Kinds() {
		kt := kindTables[k]
		sign := ""
		if k.Sign() < 0 {
			sign = "-"
		}
		where := ""
		if scoped {
			where = fmt.Sprintf(" WHERE %s = $1", kt.warehouseCol)
		}
		parts = append(parts, fmt.Sprintf(
			"SELECT article_id, unit_id, %s AS warehouse_id, occurred_at, %squantity AS quantity FROM %s%s",
			kt.warehouseCol, sign, kt.table, where,
		))
	}
	return strings.Join(parts, "\n\t\tUNION ALL ")
}

func scopedTotalsSQL() string {
	return fmt.Sprintf(`
	WITH latest_counts AS (
		SELECT DISTINCT ON (u.article_id)
			u.article_id, s.taken_at
		FROM reg_count_snapshots s
		JOIN cat_units u ON u.article_code = s.article_code
		WHERE s.warehouse_id = $1
		ORDER BY u.article_id, s.taken_at DESC
	),
	events AS (
		%s
	)
	SELECT e.article_id, e.unit_id, e.warehouse_id,
		COALESCE(SUM(e.quantity), 0)::BIGINT AS quantity
	FROM events e
	LEFT JOIN latest_counts lc ON lc.article_id = e.article_id
	WHERE lc.taken_at IS NULL OR e.occurred_at > lc.taken_at
	GROUP BY e.article_id, e.unit_id, e.warehouse_id
	`, eventsUnion(true))
}

func companyTotalsSQL() string {
	return fmt.Sprintf(`
	WITH events AS (
		%s
	)
	SELECT e.article_id, e.unit_id,
		'00000000-0000-0000-0000-000000000000'::uuid AS warehouse_id,
		COALESCE(SUM(e.quantity), 0)::BIGINT AS quantity
	FROM events e
	GROUP BY e.article_id, e.unit_id
	`, eventsUnion(false))
}
