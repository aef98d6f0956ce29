package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"gestock/internal/domain/stock"
)

// StockResponse is one resolved stock figure. The quantity is raw and may be
// negative; this endpoint serves reconciliation-grade data.
type StockResponse struct {
	ArticleID   string          `json:"articleId"`
	UnitID      string          `json:"unitId"`
	WarehouseID *string         `json:"warehouseId,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	AsOf        time.Time       `json:"asOf"`
}

// FromStockResult creates StockResponse from a resolver result.
func FromStockResult(r stock.Result) StockResponse {
	resp := StockResponse{
		ArticleID: r.ArticleID.String(),
		UnitID:    r.UnitID.String(),
		Quantity:  r.Quantity,
		AsOf:      r.AsOf,
	}
	if r.WarehouseID != nil {
		wh := r.WarehouseID.String()
		resp.WarehouseID = &wh
	}
	return resp
}

// MovementResponse is one movement event. The quantity carries the kind's
// sign, so consumers only ever sum.
type MovementResponse struct {
	ArticleID   string          `json:"articleId"`
	UnitID      string          `json:"unitId"`
	WarehouseID string          `json:"warehouseId"`
	Kind        string          `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// FromEvents creates movement responses from signed events.
func FromEvents(events []stock.Event) []MovementResponse {
	out := make([]MovementResponse, 0, len(events))
	for _, e := range events {
		out = append(out, MovementResponse{
			ArticleID:   e.ArticleID.String(),
			UnitID:      e.UnitID.String(),
			WarehouseID: e.WarehouseID.String(),
			Kind:        string(e.Kind),
			Quantity:    e.Signed().Decimal(),
			OccurredAt:  e.OccurredAt,
		})
	}
	return out
}

// BulkStockRow is one row of the bulk stock response.
type BulkStockRow struct {
	ArticleID string          `json:"articleId"`
	UnitID    string          `json:"unitId,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Invalid   bool            `json:"invalid,omitempty"`
}

// DiagnosticResponse reports a flagged article.
type DiagnosticResponse struct {
	ArticleID string `json:"articleId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// BulkStockResponse is the full raw stock listing.
type BulkStockResponse struct {
	Rows        []BulkStockRow       `json:"rows"`
	Diagnostics []DiagnosticResponse `json:"diagnostics,omitempty"`
	AsOf        time.Time            `json:"asOf"`
}

// FromBulkResult creates BulkStockResponse from a resolver bulk result.
func FromBulkResult(b stock.BulkResult) BulkStockResponse {
	resp := BulkStockResponse{
		Rows: make([]BulkStockRow, 0, len(b.Rows)),
		AsOf: b.AsOf,
	}
	for _, r := range b.Rows {
		row := BulkStockRow{
			ArticleID: r.ArticleID.String(),
			Quantity:  r.Quantity,
			Invalid:   r.Invalid,
		}
		if !r.Invalid {
			row.UnitID = r.UnitID.String()
		}
		resp.Rows = append(resp.Rows, row)
	}
	for _, d := range b.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, DiagnosticResponse{
			ArticleID: d.ArticleID.String(),
			Code:      d.Code,
			Message:   d.Message,
		})
	}
	return resp
}
