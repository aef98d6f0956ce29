package stock

import (
	"context"
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/core/types"
)

// Kind identifies the transaction table a movement event came from.
type Kind string

const (
	// KindReception - supplier delivery, goods physically entered the warehouse.
	KindReception Kind = "reception"

	// KindSale - customer sale detail, goods left via a sales transaction.
	KindSale Kind = "sale"

	// KindOutbound - manual stock exit (internal use, loss), no sale attached.
	KindOutbound Kind = "outbound"

	// KindTransferIn - inter-warehouse transfer leg entering the destination
	// warehouse.
	KindTransferIn Kind = "transfer_in"

	// KindTransferOut - inter-warehouse transfer leg leaving the source
	// warehouse.
	KindTransferOut Kind = "transfer_out"

	// KindReturn - customer return / credit note, reverses a prior sale.
	KindReturn Kind = "return"

	// KindAdjustment - manual correction entry adding stock. Negative
	// corrections are recorded as outbound issues, so the magnitude stays
	// unsigned like every other table.
	KindAdjustment Kind = "adjustment"
)

// Kinds lists every movement kind in evaluation order.
func Kinds() []Kind {
	return []Kind{
		KindReception,
		KindSale,
		KindOutbound,
		KindTransferIn,
		KindTransferOut,
		KindReturn,
		KindAdjustment,
	}
}

// Sign returns the authoritative sign of the kind. This table is the single
// source of truth; per-table readers never carry their own sign logic.
func (k Kind) Sign() int {
	switch k {
	case KindReception, KindTransferIn, KindReturn, KindAdjustment:
		return +1
	case KindSale, KindOutbound, KindTransferOut:
		return -1
	}
	return 0
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k.Sign() != 0
}

// Event is one signed, timestamped change in quantity for an
// article/unit/warehouse. Events are immutable historical facts materialized
// from the transaction tables; they are never updated, only superseded by
// compensating events (a return compensates a sale).
type Event struct {
	ArticleID   id.ID     `db:"article_id"`
	UnitID      id.ID     `db:"unit_id"`
	WarehouseID id.ID     `db:"warehouse_id"`
	Kind        Kind      `db:"kind"`
	OccurredAt  time.Time `db:"occurred_at"`

	// Quantity is the non-negative magnitude as recorded in the source table.
	Quantity types.Quantity `db:"quantity"`
}

// Signed returns the quantity with the kind's sign applied, so callers only
// ever sum.
func (e Event) Signed() types.Quantity {
	if e.Kind.Sign() < 0 {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

// EventQuery restricts an event scan.
type EventQuery struct {
	// ArticleID is required.
	ArticleID id.ID

	// UnitID restricts to one unit; nil returns events for all units of the
	// article (callers convert per unit to base before summing).
	UnitID *id.ID

	// WarehouseID restricts to one warehouse; nil means company-wide.
	// Transfer legs each filter on their own warehouse column, so in
	// company-wide mode both legs appear and cancel out.
	WarehouseID *id.ID

	// After is an exclusive lower time bound, set to the anchor timestamp
	// when a physical count exists.
	After *time.Time
}

// Validate checks the query invariants.
func (q EventQuery) Validate() error {
	if id.IsNil(q.ArticleID) {
		return apperror.NewValidation("article is required").
			WithDetail("field", "articleId")
	}
	return nil
}

// Source enumerates the signed stock-affecting events of one transaction
// kind. Each call re-queries the underlying table: one pass per call, finite,
// no caching across calls.
type Source interface {
	// Kind returns the movement kind this source reads.
	Kind() Kind

	// Events returns all matching events of this kind.
	Events(ctx context.Context, q EventQuery) ([]Event, error)
}

// CombinedSource concatenates every registered kind source. This is the
// reader the single-query resolver uses.
type CombinedSource struct {
	sources []Source
}

// NewCombinedSource builds a combined reader over the given kind sources.
// Each kind may be registered at most once.
func NewCombinedSource(sources ...Source) (*CombinedSource, error) {
	seen := make(map[Kind]bool, len(sources))
	for _, s := range sources {
		k := s.Kind()
		if !k.Valid() {
			return nil, apperror.NewValidation("unknown movement kind").
				WithDetail("kind", string(k))
		}
		if seen[k] {
			return nil, apperror.NewValidation("duplicate movement source").
				WithDetail("kind", string(k))
		}
		seen[k] = true
	}
	return &CombinedSource{sources: sources}, nil
}

// Events returns the events of every kind matching the query.
func (c *CombinedSource) Events(ctx context.Context, q EventQuery) ([]Event, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var all []Event
	for _, s := range c.sources {
		events, err := s.Events(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	return all, nil
}

// SignedTotal is a grouped aggregation row: the post-anchor signed sum of
// all movement kinds for one (article, unit, warehouse) cell.
type SignedTotal struct {
	ArticleID   id.ID          `db:"article_id"`
	UnitID      id.ID          `db:"unit_id"`
	WarehouseID id.ID          `db:"warehouse_id"`
	Quantity    types.Quantity `db:"quantity"`
}

// BulkSource aggregates movements server-side for full stock listings.
// One grouped query replaces the per-cell scans the listing would otherwise
// issue for every article x warehouse x kind combination.
type BulkSource interface {
	// SignedTotals returns signed per-(article, unit, warehouse) sums over
	// all kinds, restricted to events after each pair's latest physical
	// count when one exists. warehouseID nil means company-wide, in which
	// case no anchor cutoff applies (anchoring is warehouse-scoped).
	SignedTotals(ctx context.Context, warehouseID *id.ID) ([]SignedTotal, error)
}
