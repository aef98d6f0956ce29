package stock

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/core/types"
	"gestock/internal/domain/catalogs/article"
	"gestock/internal/domain/catalogs/unit"
)

// --- In-memory fakes ---

type fakeArticleRepo struct {
	articles []article.Article
}

func (f *fakeArticleRepo) Create(_ context.Context, a *article.Article) error {
	f.articles = append(f.articles, *a)
	return nil
}

func (f *fakeArticleRepo) GetByID(_ context.Context, articleID id.ID) (*article.Article, error) {
	for i := range f.articles {
		if f.articles[i].ID == articleID {
			return &f.articles[i], nil
		}
	}
	return nil, apperror.NewNotFound("article", articleID)
}

func (f *fakeArticleRepo) FindByCode(_ context.Context, code string) (*article.Article, error) {
	for i := range f.articles {
		if f.articles[i].Code == code {
			return &f.articles[i], nil
		}
	}
	return nil, apperror.NewNotFound("article", code)
}

func (f *fakeArticleRepo) ListActive(_ context.Context) ([]article.Article, error) {
	var out []article.Article
	for _, a := range f.articles {
		if !a.DeletionMark {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeArticleRepo) MarkDeleted(_ context.Context, articleID id.ID) error {
	for i := range f.articles {
		if f.articles[i].ID == articleID {
			f.articles[i].DeletionMark = true
		}
	}
	return nil
}

type fakeUnitRepo struct {
	units []unit.Unit
}

func (f *fakeUnitRepo) Create(_ context.Context, u *unit.Unit) error {
	f.units = append(f.units, *u)
	return nil
}

func (f *fakeUnitRepo) GetByID(_ context.Context, unitID id.ID) (*unit.Unit, error) {
	for i := range f.units {
		if f.units[i].ID == unitID {
			return &f.units[i], nil
		}
	}
	return nil, apperror.NewNotFound("unit", unitID)
}

func (f *fakeUnitRepo) ListByArticle(_ context.Context, articleID id.ID) ([]unit.Unit, error) {
	var out []unit.Unit
	for _, u := range f.units {
		if u.ArticleID == articleID {
			out = append(out, u)
		}
	}
	// fake keeps insertion order: base first, like the repository contract
	return out, nil
}

func (f *fakeUnitRepo) ListAll(_ context.Context) ([]unit.Unit, error) {
	return f.units, nil
}

func (f *fakeUnitRepo) FindByArticleCode(_ context.Context, code string) (*unit.Unit, error) {
	for i := range f.units {
		if f.units[i].ArticleCode == code {
			return &f.units[i], nil
		}
	}
	return nil, apperror.NewNotFound("unit", code)
}

type fakeEventSource struct {
	events []Event
}

func (f *fakeEventSource) Events(_ context.Context, q EventQuery) ([]Event, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var out []Event
	for _, e := range f.events {
		if e.ArticleID != q.ArticleID {
			continue
		}
		if q.UnitID != nil && e.UnitID != *q.UnitID {
			continue
		}
		if q.WarehouseID != nil && e.WarehouseID != *q.WarehouseID {
			continue
		}
		if q.After != nil && !e.OccurredAt.After(*q.After) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// fakeBulkSource aggregates the fake event log the way the grouped SQL does:
// signed sums per cell, post-anchor when warehouse-scoped.
type fakeBulkSource struct {
	events  *fakeEventSource
	anchors *fakeAnchorSource
}

func (f *fakeBulkSource) SignedTotals(_ context.Context, warehouseID *id.ID) ([]SignedTotal, error) {
	type key struct {
		articleID, unitID, warehouseID id.ID
	}
	sums := make(map[key]types.Quantity)

	for _, e := range f.events.events {
		wh := e.WarehouseID
		if warehouseID != nil {
			if wh != *warehouseID {
				continue
			}
			if a := f.anchors.latest(e.ArticleID, wh); a != nil && !e.OccurredAt.After(a.TakenAt) {
				continue
			}
		} else {
			wh = id.Nil()
		}
		k := key{e.ArticleID, e.UnitID, wh}
		sums[k] += e.Signed()
	}

	var out []SignedTotal
	for k, q := range sums {
		out = append(out, SignedTotal{
			ArticleID:   k.articleID,
			UnitID:      k.unitID,
			WarehouseID: k.warehouseID,
			Quantity:    q,
		})
	}
	return out, nil
}

type fakeAnchorSource struct {
	anchors []Anchor
}

func (f *fakeAnchorSource) latest(articleID, warehouseID id.ID) *Anchor {
	var best *Anchor
	for i := range f.anchors {
		a := &f.anchors[i]
		if a.ArticleID != articleID || a.WarehouseID != warehouseID {
			continue
		}
		if best == nil || a.TakenAt.After(best.TakenAt) {
			best = a
		}
	}
	return best
}

func (f *fakeAnchorSource) Latest(_ context.Context, articleID, warehouseID id.ID) (*Anchor, error) {
	return f.latest(articleID, warehouseID), nil
}

func (f *fakeAnchorSource) LatestAll(_ context.Context, warehouseID *id.ID) ([]Anchor, error) {
	seen := make(map[id.ID]bool)
	var out []Anchor
	for _, a := range f.anchors {
		if warehouseID != nil && a.WarehouseID != *warehouseID {
			continue
		}
		if best := f.latest(a.ArticleID, a.WarehouseID); best != nil && !seen[a.ArticleID] {
			out = append(out, *best)
			seen[a.ArticleID] = true
		}
	}
	return out, nil
}

// --- Fixture ---

type fixture struct {
	articles *fakeArticleRepo
	units    *fakeUnitRepo
	events   *fakeEventSource
	anchors  *fakeAnchorSource
	resolver *Resolver

	warehouseA id.ID
	warehouseB id.ID
}

func newFixture() *fixture {
	f := &fixture{
		articles:   &fakeArticleRepo{},
		units:      &fakeUnitRepo{},
		events:     &fakeEventSource{},
		anchors:    &fakeAnchorSource{},
		warehouseA: id.New(),
		warehouseB: id.New(),
	}
	f.resolver = NewResolver(
		f.articles,
		f.units,
		f.events,
		&fakeBulkSource{events: f.events, anchors: f.anchors},
		f.anchors,
		nil,
	)
	return f
}

// addArticle registers an article with a piece/box hierarchy and returns
// (articleID, pieceID, boxID).
func (f *fixture) addArticle(code string, boxFactor int64) (id.ID, id.ID, id.ID) {
	a := article.NewArticle(code, "Article "+code, "demo")
	f.articles.articles = append(f.articles.articles, *a)

	piece := unit.NewBaseUnit(a.ID, "Piece", code+"-P")
	box := unit.NewUnit(a.ID, "Box", 1, decimal.NewFromInt(boxFactor), code+"-B")
	f.units.units = append(f.units.units, *piece, *box)
	return a.ID, piece.ID, box.ID
}

func (f *fixture) record(articleID, unitID, warehouseID id.ID, kind Kind, qty float64, at time.Time) {
	f.events.events = append(f.events.events, Event{
		ArticleID:   articleID,
		UnitID:      unitID,
		WarehouseID: warehouseID,
		Kind:        kind,
		Quantity:    types.NewQuantityFromFloat64(qty),
		OccurredAt:  at,
	})
}

func requireQuantity(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	diff := got.Sub(decimal.RequireFromString(want)).Abs()
	require.True(t, diff.LessThan(decimal.New(1, -6)),
		"want %s, got %s", want, got)
}

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// --- Single-query resolution ---

func TestResolveStock_PieceBoxScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	articleID, pieceID, boxID := f.addArticle("X", 12)

	// Reception of 2 boxes, sale of 5 pieces, no snapshot.
	f.record(articleID, boxID, f.warehouseA, KindReception, 2, t0)
	f.record(articleID, pieceID, f.warehouseA, KindSale, 5, t0.Add(time.Hour))

	res, err := f.resolver.ResolveStock(ctx, Request{ArticleID: articleID, UnitID: pieceID})
	require.NoError(t, err)
	requireQuantity(t, "19", res.Quantity)

	res, err = f.resolver.ResolveStock(ctx, Request{ArticleID: articleID, UnitID: boxID})
	require.NoError(t, err)
	requireQuantity(t, "1.58333333", res.Quantity)
}

func TestResolveStock_ReceptionAndSaleNetZero(t *testing.T) {
	f := newFixture()
	articleID, pieceID, _ := f.addArticle("X", 12)

	f.record(articleID, pieceID, f.warehouseA, KindReception, 40, t0)
	f.record(articleID, pieceID, f.warehouseA, KindSale, 40, t0.Add(time.Hour))

	res, err := f.resolver.ResolveStock(context.Background(), Request{ArticleID: articleID, UnitID: pieceID})
	require.NoError(t, err)
	assert.True(t, res.Quantity.IsZero())
}

func TestResolveStock_ReturnCompensatesSale(t *testing.T) {
	f := newFixture()
	articleID, pieceID, _ := f.addArticle("X", 12)

	f.record(articleID, pieceID, f.warehouseA, KindReception, 10, t0)
	f.record(articleID, pieceID, f.warehouseA, KindSale, 4, t0.Add(time.Hour))
	f.record(articleID, pieceID, f.warehouseA, KindReturn, 4, t0.Add(2*time.Hour))

	res, err := f.resolver.ResolveStock(context.Background(), Request{ArticleID: articleID, UnitID: pieceID})
	require.NoError(t, err)
	requireQuantity(t, "10", res.Quantity)
}

func TestResolveStock_TransferConservation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	articleID, pieceID, _ := f.addArticle("X", 12)

	f.record(articleID, pieceID, f.warehouseA, KindReception, 10, t0)
	// Transfer of 4 from A to B: one record, two legs.
	f.record(articleID, pieceID, f.warehouseA, KindTransferOut, 4, t0.Add(time.Hour))
	f.record(articleID, pieceID, f.warehouseB, KindTransferIn, 4, t0.Add(time.Hour))

	atA, err := f.resolver.ResolveStock(ctx, Request{ArticleID: articleID, UnitID: pieceID, WarehouseID: &f.warehouseA})
	require.NoError(t, err)
	requireQuantity(t, "6", atA.Quantity)

	atB, err := f.resolver.ResolveStock(ctx, Request{ArticleID: articleID, UnitID: pieceID, WarehouseID: &f.warehouseB})
	require.NoError(t, err)
	requireQuantity(t, "4", atB.Quantity)

	// Conservation: the transfer pair leaves the company-wide total untouched.
	total, err := f.resolver.ResolveStock(ctx, Request{ArticleID: articleID, UnitID: pieceID})
	require.NoError(t, err)
	requireQuantity(t, "10", total.Quantity)
}

func TestResolveStock_AnchorDiscardsHistory(t *testing.T) {
	f := newFixture()
	articleID, pieceID, _ := f.addArticle("X", 12)

	// Movement before the count must be ignored; after it, added.
	f.record(articleID, pieceID, f.warehouseA, KindReception, 100, t0.Add(-time.Hour))
	f.anchors.anchors = append(f.anchors.anchors, Anchor{
		ArticleID:   articleID,
		WarehouseID: f.warehouseA,
		UnitID:      pieceID,
		Quantity:    types.NewQuantityFromFloat64(50),
		TakenAt:     t0,
	})
	f.record(articleID, pieceID, f.warehouseA, KindReception, 7, t0.Add(time.Hour))

	res, err := f.resolver.ResolveStock(context.Background(), Request{ArticleID: articleID, UnitID: pieceID, WarehouseID: &f.warehouseA})
	require.NoError(t, err)
	requireQuantity(t, "57", res.Quantity)
}

func TestResolveStock_AnchorCountedInBoxes(t *testing.T) {
	f := newFixture()
	articleID, pieceID, boxID := f.addArticle("X", 12)

	f.anchors.anchors = append(f.anchors.anchors, Anchor{
		ArticleID:   articleID,
		WarehouseID: f.warehouseA,
		UnitID:      boxID,
		Quantity:    types.NewQuantityFromFloat64(2),
		TakenAt:     t0,
	})

	res, err := f.resolver.ResolveStock(context.Background(), Request{ArticleID: articleID, UnitID: pieceID, WarehouseID: &f.warehouseA})
	require.NoError(t, err)
	requireQuantity(t, "24", res.Quantity)
}

func TestResolveStock_LatestAnchorWins(t *testing.T) {
	f := newFixture()
	articleID, pieceID, _ := f.addArticle("X", 12)

	f.anchors.anchors = append(f.anchors.anchors,
		Anchor{ArticleID: articleID, WarehouseID: f.warehouseA, UnitID: pieceID,
			Quantity: types.NewQuantityFromFloat64(30), TakenAt: t0.Add(-24 * time.Hour)},
		Anchor{ArticleID: articleID, WarehouseID: f.warehouseA, UnitID: pieceID,
			Quantity: types.NewQuantityFromFloat64(8), TakenAt: t0},
	)

	res, err := f.resolver.ResolveStock(context.Background(), Request{ArticleID: articleID, UnitID: pieceID, WarehouseID: &f.warehouseA})
	require.NoError(t, err)
	requireQuantity(t, "8", res.Quantity)
}

func TestResolveStock_CompanyWideIsNeverAnchored(t *testing.T) {
	f := newFixture()
	articleID, pieceID, _ := f.addArticle("X", 12)

	f.record(articleID, pieceID, f.warehouseA, KindReception, 5, t0.Add(-time.Hour))
	f.anchors.anchors = append(f.anchors.anchors, Anchor{
		ArticleID:   articleID,
		WarehouseID: f.warehouseA,
		UnitID:      pieceID,
		Quantity:    types.NewQuantityFromFloat64(999),
		TakenAt:     t0,
	})

	// Counts are performed per site; an unscoped query sums raw movements.
	res, err := f.resolver.ResolveStock(context.Background(), Request{ArticleID: articleID, UnitID: pieceID})
	require.NoError(t, err)
	requireQuantity(t, "5", res.Quantity)
}

func TestResolveStock_NegativeResultIsNotClamped(t *testing.T) {
	f := newFixture()
	articleID, pieceID, _ := f.addArticle("X", 12)

	f.record(articleID, pieceID, f.warehouseA, KindSale, 5, t0)

	res, err := f.resolver.ResolveStock(context.Background(), Request{ArticleID: articleID, UnitID: pieceID})
	require.NoError(t, err)
	requireQuantity(t, "-5", res.Quantity)
}

func TestResolveStock_NoUnitsDefined(t *testing.T) {
	f := newFixture()
	a := article.NewArticle("EMPTY", "No units", "demo")
	f.articles.articles = append(f.articles.articles, *a)

	_, err := f.resolver.ResolveStock(context.Background(), Request{ArticleID: a.ID, UnitID: id.New()})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoUnitsDefined))
}

func TestResolveStock_AnchorUnitUnresolvable(t *testing.T) {
	f := newFixture()
	articleID, pieceID, _ := f.addArticle("X", 12)

	// Count resolved against a unit the article does not own.
	f.anchors.anchors = append(f.anchors.anchors, Anchor{
		ArticleID:   articleID,
		WarehouseID: f.warehouseA,
		UnitID:      id.New(),
		Quantity:    types.NewQuantityFromFloat64(3),
		TakenAt:     t0,
	})

	_, err := f.resolver.ResolveStock(context.Background(), Request{ArticleID: articleID, UnitID: pieceID, WarehouseID: &f.warehouseA})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAnchorUnitUnresolvable))
}

// --- Bulk resolution ---

func TestResolveStockBulk_RowsPerUnit(t *testing.T) {
	f := newFixture()
	articleID, pieceID, boxID := f.addArticle("X", 12)

	f.record(articleID, boxID, f.warehouseA, KindReception, 2, t0)
	f.record(articleID, pieceID, f.warehouseA, KindSale, 5, t0.Add(time.Hour))

	res, err := f.resolver.ResolveStockBulk(context.Background(), &f.warehouseA)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Empty(t, res.Diagnostics)

	byUnit := make(map[id.ID]Result)
	for _, row := range res.Rows {
		byUnit[row.UnitID] = row
	}
	requireQuantity(t, "19", byUnit[pieceID].Quantity)
	requireQuantity(t, "1.58333333", byUnit[boxID].Quantity)
}

func TestResolveStockBulk_FlagsStructuralErrors(t *testing.T) {
	f := newFixture()
	goodID, goodPiece, _ := f.addArticle("GOOD", 12)

	// Article with a malformed hierarchy: zero factor at level 1.
	badID, _, _ := f.addArticle("BAD", 12)
	for i := range f.units.units {
		if f.units.units[i].ArticleID == badID && f.units.units[i].Level == 1 {
			f.units.units[i].ConversionFactor = decimal.Zero
		}
	}

	f.record(goodID, goodPiece, f.warehouseA, KindReception, 3, t0)

	res, err := f.resolver.ResolveStockBulk(context.Background(), &f.warehouseA)
	require.NoError(t, err, "structural errors must not abort the listing")

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, badID, res.Diagnostics[0].ArticleID)
	assert.Equal(t, apperror.CodeInvalidConversionFactor, res.Diagnostics[0].Code)

	var flagged, valid int
	for _, row := range res.Rows {
		if row.Invalid {
			flagged++
			assert.True(t, row.Quantity.IsZero(), "flagged rows are zeroed")
		} else {
			valid++
		}
	}
	assert.Equal(t, 1, flagged)
	assert.Equal(t, 2, valid)
}

func TestResolveStockBulk_FlagsAnchorWithoutUnit(t *testing.T) {
	f := newFixture()
	articleID, _, _ := f.addArticle("X", 12)

	// An anchor source that cannot name the counted unit hands back a zero
	// unit id; the row is flagged, not resolved against a guessed unit.
	f.anchors.anchors = append(f.anchors.anchors, Anchor{
		ArticleID:   articleID,
		WarehouseID: f.warehouseA,
		UnitID:      id.Nil(),
		Quantity:    types.NewQuantityFromFloat64(3),
		TakenAt:     t0,
	})

	res, err := f.resolver.ResolveStockBulk(context.Background(), &f.warehouseA)
	require.NoError(t, err, "a flagged anchor must not abort the listing")

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, articleID, res.Diagnostics[0].ArticleID)
	assert.Equal(t, apperror.CodeAnchorUnitUnresolvable, res.Diagnostics[0].Code)

	require.Len(t, res.Rows, 1)
	assert.True(t, res.Rows[0].Invalid)
	assert.True(t, res.Rows[0].Quantity.IsZero())
}

func TestResolveStockBulk_CompanyWideTransfersCancel(t *testing.T) {
	f := newFixture()
	articleID, pieceID, _ := f.addArticle("X", 12)

	f.record(articleID, pieceID, f.warehouseA, KindReception, 10, t0)
	f.record(articleID, pieceID, f.warehouseA, KindTransferOut, 4, t0.Add(time.Hour))
	f.record(articleID, pieceID, f.warehouseB, KindTransferIn, 4, t0.Add(time.Hour))

	res, err := f.resolver.ResolveStockBulk(context.Background(), nil)
	require.NoError(t, err)

	for _, row := range res.Rows {
		if row.UnitID == pieceID {
			requireQuantity(t, "10", row.Quantity)
		}
	}
}

func TestResolveStockBulk_AppliesAnchors(t *testing.T) {
	f := newFixture()
	articleID, pieceID, _ := f.addArticle("X", 12)

	f.record(articleID, pieceID, f.warehouseA, KindReception, 100, t0.Add(-time.Hour))
	f.anchors.anchors = append(f.anchors.anchors, Anchor{
		ArticleID:   articleID,
		WarehouseID: f.warehouseA,
		UnitID:      pieceID,
		Quantity:    types.NewQuantityFromFloat64(50),
		TakenAt:     t0,
	})
	f.record(articleID, pieceID, f.warehouseA, KindReception, 7, t0.Add(time.Hour))

	res, err := f.resolver.ResolveStockBulk(context.Background(), &f.warehouseA)
	require.NoError(t, err)

	for _, row := range res.Rows {
		if row.UnitID == pieceID {
			requireQuantity(t, "57", row.Quantity)
		}
	}
}

func TestResolveStockBulk_EmptyCatalog(t *testing.T) {
	f := newFixture()

	res, err := f.resolver.ResolveStockBulk(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Diagnostics)
}
