package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/domain/reports"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// GetStockListing handles GET /reports/stock-listing
// The sales-facing listing: designations attached, quantities clamped at zero.
func (h *ReportsHandler) GetStockListing(c *gin.Context) {
	warehouseID, ok := h.ParseOptionalIDQuery(c, "warehouseId")
	if !ok {
		return
	}

	listing, err := h.service.StockListing(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, listing)
}

// GetReconciliation handles GET /reports/reconciliation
// Raw negative figures and structural diagnostics, nothing clamped.
func (h *ReportsHandler) GetReconciliation(c *gin.Context) {
	warehouseID, ok := h.ParseOptionalIDQuery(c, "warehouseId")
	if !ok {
		return
	}

	report, err := h.service.Reconciliation(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stock-listing", h.GetStockListing)
	rg.GET("/reconciliation", h.GetReconciliation)
}
