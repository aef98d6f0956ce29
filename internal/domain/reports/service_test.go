package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs/article"
	"gestock/internal/domain/catalogs/unit"
	"gestock/internal/domain/stock"
)

type fakeResolver struct {
	result stock.BulkResult
}

func (r *fakeResolver) ResolveStockBulk(context.Context, *id.ID) (stock.BulkResult, error) {
	return r.result, nil
}

type fakeArticleRepo struct {
	articles []article.Article
}

func (r *fakeArticleRepo) Create(context.Context, *article.Article) error { return nil }

func (r *fakeArticleRepo) GetByID(_ context.Context, articleID id.ID) (*article.Article, error) {
	for i := range r.articles {
		if r.articles[i].ID == articleID {
			return &r.articles[i], nil
		}
	}
	return nil, apperror.NewNotFound("article", articleID.String())
}

func (r *fakeArticleRepo) FindByCode(_ context.Context, code string) (*article.Article, error) {
	for i := range r.articles {
		if r.articles[i].Code == code {
			return &r.articles[i], nil
		}
	}
	return nil, apperror.NewNotFound("article", code)
}

func (r *fakeArticleRepo) ListActive(context.Context) ([]article.Article, error) {
	return r.articles, nil
}

func (r *fakeArticleRepo) MarkDeleted(context.Context, id.ID) error { return nil }

type fakeUnitRepo struct {
	units []unit.Unit
}

func (r *fakeUnitRepo) Create(context.Context, *unit.Unit) error { return nil }

func (r *fakeUnitRepo) GetByID(_ context.Context, unitID id.ID) (*unit.Unit, error) {
	for i := range r.units {
		if r.units[i].ID == unitID {
			return &r.units[i], nil
		}
	}
	return nil, apperror.NewNotFound("unit", unitID.String())
}

func (r *fakeUnitRepo) ListByArticle(_ context.Context, articleID id.ID) ([]unit.Unit, error) {
	var out []unit.Unit
	for _, u := range r.units {
		if u.ArticleID == articleID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) ListAll(context.Context) ([]unit.Unit, error) { return r.units, nil }

func (r *fakeUnitRepo) FindByArticleCode(_ context.Context, code string) (*unit.Unit, error) {
	for i := range r.units {
		if r.units[i].ArticleCode == code {
			return &r.units[i], nil
		}
	}
	return nil, apperror.NewNotFound("unit", code)
}

type reportFixture struct {
	svc       *Service
	resolver  *fakeResolver
	articleID id.ID
	pieceID   id.ID
	boxID     id.ID
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()

	a := article.NewArticle("WID", "Widget", "Hardware")
	piece := unit.NewBaseUnit(a.ID, "Piece", "WID-PC")
	box := unit.NewUnit(a.ID, "Box", 1, decimal.NewFromInt(12), "WID-BOX")

	resolver := &fakeResolver{}
	svc := NewService(
		resolver,
		&fakeArticleRepo{articles: []article.Article{*a}},
		&fakeUnitRepo{units: []unit.Unit{*piece, *box}},
	)
	return &reportFixture{
		svc:       svc,
		resolver:  resolver,
		articleID: a.ID,
		pieceID:   piece.ID,
		boxID:     box.ID,
	}
}

func TestStockListing_EnrichesAndClamps(t *testing.T) {
	f := newReportFixture(t)
	asOf := time.Now().UTC()

	f.resolver.result = stock.BulkResult{
		Rows: []stock.Result{
			{ArticleID: f.articleID, UnitID: f.pieceID, Quantity: decimal.NewFromInt(19), AsOf: asOf},
			{ArticleID: f.articleID, UnitID: f.boxID, Quantity: decimal.RequireFromString("-1.5"), AsOf: asOf},
		},
		AsOf: asOf,
	}

	listing, err := f.svc.StockListing(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, listing.Lines, 2)

	piece := listing.Lines[0]
	assert.Equal(t, "WID", piece.ArticleCode)
	assert.Equal(t, "Widget", piece.ArticleDesignation)
	assert.Equal(t, "Hardware", piece.Category)
	assert.Equal(t, "Piece", piece.UnitDesignation)
	assert.Equal(t, 0, piece.UnitLevel)
	assert.True(t, piece.Quantity.Equal(decimal.NewFromInt(19)))

	// The negative box figure is clamped to zero in the listing.
	box := listing.Lines[1]
	assert.Equal(t, "Box", box.UnitDesignation)
	assert.True(t, box.Quantity.IsZero())
}

func TestStockListing_CarriesFlaggedRowsAndDiagnostics(t *testing.T) {
	f := newReportFixture(t)
	brokenID := id.New()

	f.resolver.result = stock.BulkResult{
		Rows: []stock.Result{
			{ArticleID: brokenID, Quantity: decimal.Zero, Invalid: true},
			{ArticleID: f.articleID, UnitID: f.pieceID, Quantity: decimal.NewFromInt(3)},
		},
		Diagnostics: []stock.Diagnostic{{
			ArticleID: brokenID,
			Code:      apperror.CodeNoUnitsDefined,
			Message:   "article has no units defined",
		}},
	}

	listing, err := f.svc.StockListing(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, listing.Lines, 2)
	assert.True(t, listing.Lines[0].Flagged)
	assert.True(t, listing.Lines[0].Quantity.IsZero())
	require.Len(t, listing.Diagnostics, 1)
	assert.Equal(t, apperror.CodeNoUnitsDefined, listing.Diagnostics[0].Code)
}

func TestReconciliation_KeepsRawNegatives(t *testing.T) {
	f := newReportFixture(t)

	f.resolver.result = stock.BulkResult{
		Rows: []stock.Result{
			{ArticleID: f.articleID, UnitID: f.pieceID, Quantity: decimal.NewFromInt(-5)},
			{ArticleID: f.articleID, UnitID: f.boxID, Quantity: decimal.NewFromInt(7)},
		},
	}

	report, err := f.svc.Reconciliation(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Negative, 1)

	line := report.Negative[0]
	assert.Equal(t, "WID", line.ArticleCode)
	assert.Equal(t, "Piece", line.UnitDesignation)
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(-5)))
}

func TestReconciliation_SkipsFlaggedRowsButReportsDiagnostics(t *testing.T) {
	f := newReportFixture(t)
	brokenID := id.New()

	f.resolver.result = stock.BulkResult{
		Rows: []stock.Result{
			{ArticleID: brokenID, Quantity: decimal.Zero, Invalid: true},
		},
		Diagnostics: []stock.Diagnostic{{
			ArticleID: brokenID,
			Code:      apperror.CodeAnchorUnitUnresolvable,
			Message:   "inventory count references an unknown article code",
		}},
	}

	report, err := f.svc.Reconciliation(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Negative)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, apperror.CodeAnchorUnitUnresolvable, report.Diagnostics[0].Code)
}
