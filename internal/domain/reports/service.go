package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs/article"
	"gestock/internal/domain/catalogs/unit"
	"gestock/internal/domain/stock"
)

// StockReader is the slice of the resolver the reports need.
type StockReader interface {
	ResolveStockBulk(ctx context.Context, warehouseID *id.ID) (stock.BulkResult, error)
}

// Service builds report projections.
type Service struct {
	resolver StockReader
	articles article.Repository
	units    unit.Repository
}

// NewService creates a reports service.
func NewService(resolver StockReader, articles article.Repository, units unit.Repository) *Service {
	return &Service{
		resolver: resolver,
		articles: articles,
		units:    units,
	}
}

// catalogIndex caches designations for one report run.
type catalogIndex struct {
	articles map[id.ID]article.Article
	units    map[id.ID]unit.Unit
}

func (s *Service) loadIndex(ctx context.Context) (*catalogIndex, error) {
	arts, err := s.articles.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	units, err := s.units.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}

	idx := &catalogIndex{
		articles: make(map[id.ID]article.Article, len(arts)),
		units:    make(map[id.ID]unit.Unit, len(units)),
	}
	for _, a := range arts {
		idx.articles[a.ID] = a
	}
	for _, u := range units {
		idx.units[u.ID] = u
	}
	return idx, nil
}

// StockListing computes the interactive listing for a warehouse (nil means
// company-wide). Quantities are clamped at zero; flagged articles appear with
// a zero line and a diagnostic.
func (s *Service) StockListing(ctx context.Context, warehouseID *id.ID) (*StockListing, error) {
	idx, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	bulk, err := s.resolver.ResolveStockBulk(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	listing := &StockListing{
		WarehouseID: warehouseID,
		Lines:       make([]StockLine, 0, len(bulk.Rows)),
		Diagnostics: bulk.Diagnostics,
		AsOf:        bulk.AsOf,
	}

	for _, row := range bulk.Rows {
		line := StockLine{
			ArticleID: row.ArticleID,
			UnitID:    row.UnitID,
			Quantity:  row.Quantity,
			Flagged:   row.Invalid,
		}
		if a, ok := idx.articles[row.ArticleID]; ok {
			line.ArticleCode = a.Code
			line.ArticleDesignation = a.Designation
			line.Category = a.Category
		}
		if u, ok := idx.units[row.UnitID]; ok {
			line.UnitDesignation = u.Designation
			line.UnitLevel = u.Level
		}
		if line.Quantity.IsNegative() {
			line.Quantity = decimal.Zero
		}
		listing.Lines = append(listing.Lines, line)
	}

	return listing, nil
}

// Reconciliation computes the anomaly report: raw negative rows plus the
// structural diagnostics of flagged articles. Nothing is clamped here.
func (s *Service) Reconciliation(ctx context.Context, warehouseID *id.ID) (*ReconciliationReport, error) {
	idx, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	bulk, err := s.resolver.ResolveStockBulk(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		WarehouseID: warehouseID,
		Negative:    make([]ReconciliationLine, 0),
		Diagnostics: bulk.Diagnostics,
		AsOf:        bulk.AsOf,
	}

	for _, row := range bulk.Rows {
		if row.Invalid || !row.Quantity.IsNegative() {
			continue
		}
		line := ReconciliationLine{
			ArticleID: row.ArticleID,
			UnitID:    row.UnitID,
			Quantity:  row.Quantity,
		}
		if a, ok := idx.articles[row.ArticleID]; ok {
			line.ArticleCode = a.Code
			line.ArticleDesignation = a.Designation
		}
		if u, ok := idx.units[row.UnitID]; ok {
			line.UnitDesignation = u.Designation
		}
		report.Negative = append(report.Negative, line)
	}

	return report, nil
}
