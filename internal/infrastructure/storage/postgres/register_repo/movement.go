// Package register_repo provides PostgreSQL readers over the movement
// transaction tables and the count snapshot register. All readers are
// pure: they never write movement data.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gestock/internal/domain/stock"
	"gestock/internal/infrastructure/storage/postgres"
)

// Transaction tables. Each table stores non-negative magnitudes; the sign
// lives in the movement kind, applied by the domain layer.
const (
	receptionTable  = "tr_receptions"
	saleTable       = "tr_sales"
	outboundTable   = "tr_outbounds"
	transferTable   = "tr_transfers"
	returnTable     = "tr_returns"
	adjustmentTable = "tr_adjustments"
)

// kindSource reads one transaction table as a stock.Source. The five
// single-warehouse tables share a layout; transfers have their own reader.
type kindSource struct {
	txm          *postgres.TxManager
	builder      squirrel.StatementBuilderType
	kind         stock.Kind
	table        string
	warehouseCol string
}

func newKindSource(txm *postgres.TxManager, kind stock.Kind, table, warehouseCol string) *kindSource {
	return &kindSource{
		txm:          txm,
		builder:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		kind:         kind,
		table:        table,
		warehouseCol: warehouseCol,
	}
}

// NewReceptionSource reads supplier deliveries.
func NewReceptionSource(txm *postgres.TxManager) stock.Source {
	return newKindSource(txm, stock.KindReception, receptionTable, "warehouse_id")
}

// NewSaleSource reads customer sale details.
func NewSaleSource(txm *postgres.TxManager) stock.Source {
	return newKindSource(txm, stock.KindSale, saleTable, "warehouse_id")
}

// NewOutboundSource reads manual stock exits.
func NewOutboundSource(txm *postgres.TxManager) stock.Source {
	return newKindSource(txm, stock.KindOutbound, outboundTable, "warehouse_id")
}

// NewReturnSource reads customer returns.
func NewReturnSource(txm *postgres.TxManager) stock.Source {
	return newKindSource(txm, stock.KindReturn, returnTable, "warehouse_id")
}

// NewAdjustmentSource reads manual additive corrections.
func NewAdjustmentSource(txm *postgres.TxManager) stock.Source {
	return newKindSource(txm, stock.KindAdjustment, adjustmentTable, "warehouse_id")
}

// Kind implements stock.Source.
func (s *kindSource) Kind() stock.Kind {
	return s.kind
}

// Events implements stock.Source. One pass over the table per call.
func (s *kindSource) Events(ctx context.Context, q stock.EventQuery) ([]stock.Event, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	sel := s.builder.Select(
		"article_id",
		"unit_id",
		s.warehouseCol+" AS warehouse_id",
		fmt.Sprintf("'%s' AS kind", s.kind),
		"occurred_at",
		"quantity",
	).From(s.table).
		Where(squirrel.Eq{"article_id": q.ArticleID})

	if q.UnitID != nil {
		sel = sel.Where(squirrel.Eq{"unit_id": *q.UnitID})
	}
	if q.WarehouseID != nil {
		sel = sel.Where(squirrel.Eq{s.warehouseCol: *q.WarehouseID})
	}
	if q.After != nil {
		// Strictly after: the anchor already contains the counted state.
		sel = sel.Where(squirrel.Gt{"occurred_at": *q.After})
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var events []stock.Event
	if err := pgxscan.Select(ctx, s.txm.GetQuerier(ctx), &events, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", s.table, err)
	}

	return events, nil
}
