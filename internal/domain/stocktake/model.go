// Package stocktake provides the physical inventory count document.
// Posting a stocktake appends one snapshot per counted line; snapshots are
// append-only with latest-wins semantics and become the anchors the stock
// resolver computes from.
package stocktake

import (
	"context"
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/entity"
	"gestock/internal/core/id"
	"gestock/internal/core/types"
)

// Stocktake represents one physical count session at a warehouse.
type Stocktake struct {
	entity.BaseDocument

	// Number is the document number (generated when empty)
	Number string `db:"number" json:"number"`

	// WarehouseID is the counted site; counts are strictly per warehouse
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// CountedAt is the moment the count is authoritative for; it becomes
	// the anchor timestamp that discards earlier movement history
	CountedAt time.Time `db:"counted_at" json:"countedAt"`

	// Lines are the counted quantities
	Lines []Line `db:"-" json:"lines"`
}

// Line is one counted article code.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// ArticleCode is the per-packaging-level SKU the counter scanned;
	// it implies both the article and the counted unit
	ArticleCode string `db:"article_code" json:"articleCode"`

	// Quantity counted; zero is meaningful (shelf found empty)
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// NewStocktake creates a count document for a warehouse.
func NewStocktake(warehouseID id.ID, countedAt time.Time) *Stocktake {
	return &Stocktake{
		BaseDocument: entity.NewBaseDocument(),
		WarehouseID:  warehouseID,
		CountedAt:    countedAt,
		Lines:        make([]Line, 0),
	}
}

// AddLine appends a counted line.
func (s *Stocktake) AddLine(articleCode string, qty types.Quantity) {
	s.Lines = append(s.Lines, Line{
		LineID:      id.New(),
		LineNo:      len(s.Lines) + 1,
		ArticleCode: articleCode,
		Quantity:    qty,
	})
}

// Validate implements entity.Validatable.
func (s *Stocktake) Validate(ctx context.Context) error {
	if id.IsNil(s.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if s.CountedAt.IsZero() {
		return apperror.NewValidation("counted-at timestamp is required").
			WithDetail("field", "countedAt")
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[string]bool, len(s.Lines))
	for i, line := range s.Lines {
		if line.ArticleCode == "" {
			return apperror.NewValidation("article code is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity.IsNegative() {
			return apperror.NewValidation("counted quantity cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if seen[line.ArticleCode] {
			return apperror.NewValidation("article code counted twice").
				WithDetail("field", "lines").
				WithDetail("articleCode", line.ArticleCode)
		}
		seen[line.ArticleCode] = true
	}

	return nil
}
