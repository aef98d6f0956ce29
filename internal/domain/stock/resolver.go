package stock

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/core/tx"
	"gestock/internal/domain/catalogs/article"
	"gestock/internal/domain/catalogs/unit"
	"gestock/pkg/logger"
)

// EventSource is the reader the single-query path uses. CombinedSource is
// the production implementation; tests substitute fakes.
type EventSource interface {
	Events(ctx context.Context, q EventQuery) ([]Event, error)
}

// Request asks for the stock of one article in one unit, optionally scoped
// to one warehouse (nil means company-wide).
type Request struct {
	ArticleID   id.ID
	UnitID      id.ID
	WarehouseID *id.ID
}

// Result is a resolved stock figure.
//
// Quantity is the raw value and may be negative: data-integrity problems
// must stay visible to reconciliation callers. Clamping to zero happens only
// at the presentation boundary (the interactive listing DTO).
type Result struct {
	ArticleID   id.ID           `json:"articleId"`
	UnitID      id.ID           `json:"unitId"`
	WarehouseID *id.ID          `json:"warehouseId,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	AsOf        time.Time       `json:"asOf"`

	// Invalid marks a bulk row zeroed because of a structural error
	// (no units, bad factor, unresolvable anchor).
	Invalid bool `json:"invalid,omitempty"`
}

// Diagnostic reports a per-row structural failure from a bulk listing.
type Diagnostic struct {
	ArticleID   id.ID  `json:"articleId"`
	WarehouseID *id.ID `json:"warehouseId,omitempty"`
	Err         error  `json:"-"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

// BulkResult is a full stock listing: one row per (article, unit) plus a
// parallel list of per-row diagnostics for flagged articles.
type BulkResult struct {
	Rows        []Result     `json:"rows"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	AsOf        time.Time    `json:"asOf"`
}

// Resolver is the public entry point of the engine. It orchestrates the unit
// graph, the movement sources and the snapshot anchor into a single stock
// figure, replacing the per-screen reimplementations of the desktop system.
//
// The resolver is a pure reader; it never mutates movement or snapshot data.
type Resolver struct {
	articles article.Repository
	units    unit.Repository
	events   EventSource
	bulk     BulkSource
	anchors  AnchorSource
	txm      tx.ReadOnlyManager
}

// NewResolver creates a resolver. txm may be nil (tests with in-memory
// fakes); when present, every resolution runs inside one read-only
// repeatable-read transaction so the anchor lookup and the movement scan
// observe the same database snapshot. The desktop system read them
// independently and could lose or double-see a concurrent movement.
func NewResolver(
	articles article.Repository,
	units unit.Repository,
	events EventSource,
	bulk BulkSource,
	anchors AnchorSource,
	txm tx.ReadOnlyManager,
) *Resolver {
	return &Resolver{
		articles: articles,
		units:    units,
		events:   events,
		bulk:     bulk,
		anchors:  anchors,
		txm:      txm,
	}
}

func (r *Resolver) readOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.txm == nil {
		return fn(ctx)
	}
	return r.txm.ReadOnly(ctx, fn)
}

// ResolveStock computes the current stock of one article in the requested
// unit, scoped to a warehouse when given.
func (r *Resolver) ResolveStock(ctx context.Context, req Request) (Result, error) {
	var res Result
	err := r.readOnly(ctx, func(ctx context.Context) error {
		var inner error
		res, inner = r.resolveOne(ctx, req)
		return inner
	})
	return res, err
}

func (r *Resolver) resolveOne(ctx context.Context, req Request) (Result, error) {
	asOf := time.Now().UTC()

	units, err := r.units.ListByArticle(ctx, req.ArticleID)
	if err != nil {
		return Result{}, fmt.Errorf("list units: %w", err)
	}

	graph, err := NewUnitGraph(req.ArticleID, units)
	if err != nil {
		return Result{}, err
	}

	coefReq, err := graph.CoefficientToBase(req.UnitID)
	if err != nil {
		return Result{}, err
	}

	anchorBase, after, err := r.anchorBase(ctx, graph, req.ArticleID, req.WarehouseID)
	if err != nil {
		return Result{}, err
	}

	events, err := r.events.Events(ctx, EventQuery{
		ArticleID:   req.ArticleID,
		WarehouseID: req.WarehouseID,
		After:       after,
	})
	if err != nil {
		return Result{}, err
	}

	totalBase := anchorBase
	for _, e := range events {
		coef, err := graph.CoefficientToBase(e.UnitID)
		if err != nil {
			return Result{}, err
		}
		totalBase = totalBase.Add(e.Signed().Decimal().Mul(coef))
	}

	if !coefReq.IsPositive() {
		return Result{}, apperror.NewInvalidConversionFactor(req.ArticleID, req.UnitID, coefReq.String())
	}
	qty := totalBase.DivRound(coefReq, conversionScale)

	return Result{
		ArticleID:   req.ArticleID,
		UnitID:      req.UnitID,
		WarehouseID: req.WarehouseID,
		Quantity:    qty,
		AsOf:        asOf,
	}, nil
}

// anchorBase resolves the latest physical count for the pair and converts it
// to base units. Anchoring is warehouse-scoped: company-wide queries get no
// anchor and an unrestricted movement scan.
func (r *Resolver) anchorBase(ctx context.Context, graph *UnitGraph, articleID id.ID, warehouseID *id.ID) (decimal.Decimal, *time.Time, error) {
	if warehouseID == nil {
		return decimal.Zero, nil, nil
	}

	anchor, err := r.anchors.Latest(ctx, articleID, *warehouseID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if anchor == nil {
		return decimal.Zero, nil, nil
	}

	coef, err := graph.CoefficientToBase(anchor.UnitID)
	if err != nil {
		// The count resolved to a unit the article does not own.
		return decimal.Zero, nil, apperror.NewAnchorUnitUnresolvable(
			graph.BaseUnit().ArticleCode, *warehouseID).WithCause(err)
	}

	takenAt := anchor.TakenAt
	return anchor.Quantity.Decimal().Mul(coef), &takenAt, nil
}

// ResolveStockBulk computes a full stock listing: every active article, one
// row per unit, scoped to one warehouse or company-wide.
//
// Movements are read through one grouped aggregation instead of per-cell
// queries; the per-article conversion then fans out across goroutines.
// Structural errors flag and zero their article's rows without aborting the
// listing; connectivity errors abort the whole call.
func (r *Resolver) ResolveStockBulk(ctx context.Context, warehouseID *id.ID) (BulkResult, error) {
	var res BulkResult
	err := r.readOnly(ctx, func(ctx context.Context) error {
		var inner error
		res, inner = r.resolveBulk(ctx, warehouseID)
		return inner
	})
	return res, err
}

// articleSlot collects the rows of one article so the fan-out keeps the
// repository's article ordering.
type articleSlot struct {
	rows []Result
	diag *Diagnostic
}

func (r *Resolver) resolveBulk(ctx context.Context, warehouseID *id.ID) (BulkResult, error) {
	asOf := time.Now().UTC()

	articles, err := r.articles.ListActive(ctx)
	if err != nil {
		return BulkResult{}, fmt.Errorf("list articles: %w", err)
	}

	allUnits, err := r.units.ListAll(ctx)
	if err != nil {
		return BulkResult{}, fmt.Errorf("list units: %w", err)
	}
	unitsByArticle := make(map[id.ID][]unit.Unit)
	for _, u := range allUnits {
		unitsByArticle[u.ArticleID] = append(unitsByArticle[u.ArticleID], u)
	}

	totals, err := r.bulk.SignedTotals(ctx, warehouseID)
	if err != nil {
		return BulkResult{}, err
	}
	totalsByArticle := make(map[id.ID][]SignedTotal)
	for _, t := range totals {
		totalsByArticle[t.ArticleID] = append(totalsByArticle[t.ArticleID], t)
	}

	anchorsByArticle := make(map[id.ID]Anchor)
	if warehouseID != nil {
		anchors, err := r.anchors.LatestAll(ctx, warehouseID)
		if err != nil {
			return BulkResult{}, err
		}
		for _, a := range anchors {
			anchorsByArticle[a.ArticleID] = a
		}
	}

	slots := make([]articleSlot, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range articles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := articles[i]
			anchor, hasAnchor := anchorsByArticle[a.ID]
			var anchorPtr *Anchor
			if hasAnchor {
				anchorPtr = &anchor
			}
			slots[i] = r.resolveArticleRows(
				a.ID,
				warehouseID,
				unitsByArticle[a.ID],
				totalsByArticle[a.ID],
				anchorPtr,
				asOf,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BulkResult{}, err
	}

	res := BulkResult{AsOf: asOf}
	for _, slot := range slots {
		res.Rows = append(res.Rows, slot.rows...)
		if slot.diag != nil {
			res.Diagnostics = append(res.Diagnostics, *slot.diag)
		}
	}

	if len(res.Diagnostics) > 0 {
		logger.Warn(ctx, "stock listing produced flagged rows",
			"flagged", len(res.Diagnostics),
			"rows", len(res.Rows),
		)
	}

	return res, nil
}

// resolveArticleRows converts one article's grouped totals into per-unit
// rows. Pure in-memory: all data was loaded inside the read transaction.
func (r *Resolver) resolveArticleRows(
	articleID id.ID,
	warehouseID *id.ID,
	units []unit.Unit,
	totals []SignedTotal,
	anchor *Anchor,
	asOf time.Time,
) articleSlot {
	flag := func(err error) articleSlot {
		diag := newDiagnostic(articleID, warehouseID, err)
		return articleSlot{
			rows: []Result{{
				ArticleID:   articleID,
				WarehouseID: warehouseID,
				Quantity:    decimal.Zero,
				AsOf:        asOf,
				Invalid:     true,
			}},
			diag: &diag,
		}
	}

	graph, err := NewUnitGraph(articleID, units)
	if err != nil {
		return flag(err)
	}

	totalBase := decimal.Zero

	if anchor != nil {
		if id.IsNil(anchor.UnitID) {
			return flag(apperror.NewAnchorUnitUnresolvable(graph.BaseUnit().ArticleCode, anchor.WarehouseID))
		}
		coef, err := graph.CoefficientToBase(anchor.UnitID)
		if err != nil {
			return flag(apperror.NewAnchorUnitUnresolvable(graph.BaseUnit().ArticleCode, anchor.WarehouseID).WithCause(err))
		}
		totalBase = totalBase.Add(anchor.Quantity.Decimal().Mul(coef))
	}

	for _, t := range totals {
		coef, err := graph.CoefficientToBase(t.UnitID)
		if err != nil {
			return flag(err)
		}
		totalBase = totalBase.Add(t.Quantity.Decimal().Mul(coef))
	}

	slot := articleSlot{rows: make([]Result, 0, len(units))}
	for _, u := range graph.Units() {
		qty, err := graph.FromBase(u.ID, totalBase)
		if err != nil {
			return flag(err)
		}
		slot.rows = append(slot.rows, Result{
			ArticleID:   articleID,
			UnitID:      u.ID,
			WarehouseID: warehouseID,
			Quantity:    qty,
			AsOf:        asOf,
		})
	}
	return slot
}

func newDiagnostic(articleID id.ID, warehouseID *id.ID, err error) Diagnostic {
	d := Diagnostic{
		ArticleID:   articleID,
		WarehouseID: warehouseID,
		Err:         err,
	}
	if appErr, ok := apperror.AsAppError(err); ok {
		d.Code = appErr.Code
		d.Message = appErr.Message
	} else {
		d.Code = apperror.CodeInternal
		d.Message = err.Error()
	}
	return d
}
