// Package reports builds the read models served to users: the interactive
// stock listing and the reconciliation report. Both are thin projections over
// the stock resolver; no report runs its own movement arithmetic.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"gestock/internal/core/id"
	"gestock/internal/domain/stock"
)

// StockLine is one row of the interactive stock listing.
//
// Quantity is clamped at zero here and only here. The listing is a sales-facing
// screen; a negative figure would read as an offer of stock that does not
// exist. The underlying raw value stays visible in the reconciliation report.
type StockLine struct {
	ArticleID          id.ID           `json:"articleId"`
	ArticleCode        string          `json:"articleCode"`
	ArticleDesignation string          `json:"articleDesignation"`
	Category           string          `json:"category"`
	UnitID             id.ID           `json:"unitId"`
	UnitDesignation    string          `json:"unitDesignation"`
	UnitLevel          int             `json:"unitLevel"`
	Quantity           decimal.Decimal `json:"quantity"`

	// Flagged marks an article the resolver could not compute; its quantity
	// is zero and a diagnostic explains why
	Flagged bool `json:"flagged,omitempty"`
}

// StockListing is the full listing for one warehouse or the whole company.
type StockListing struct {
	WarehouseID *id.ID             `json:"warehouseId,omitempty"`
	Lines       []StockLine        `json:"lines"`
	Diagnostics []stock.Diagnostic `json:"diagnostics,omitempty"`
	AsOf        time.Time          `json:"asOf"`
}

// ReconciliationLine is one anomalous row: a raw negative stock figure that
// points at missing or mis-signed movement data.
type ReconciliationLine struct {
	ArticleID          id.ID           `json:"articleId"`
	ArticleCode        string          `json:"articleCode"`
	ArticleDesignation string          `json:"articleDesignation"`
	UnitID             id.ID           `json:"unitId"`
	UnitDesignation    string          `json:"unitDesignation"`
	Quantity           decimal.Decimal `json:"quantity"`
}

// ReconciliationReport surfaces everything the listing hides: negative raw
// quantities and the structural diagnostics of flagged articles.
type ReconciliationReport struct {
	WarehouseID *id.ID               `json:"warehouseId,omitempty"`
	Negative    []ReconciliationLine `json:"negative"`
	Diagnostics []stock.Diagnostic   `json:"diagnostics,omitempty"`
	AsOf        time.Time            `json:"asOf"`
}
