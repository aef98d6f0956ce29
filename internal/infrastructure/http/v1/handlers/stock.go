package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"gestock/internal/core/apperror"
	"gestock/internal/domain/stock"
	"gestock/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for stock resolution.
type StockHandler struct {
	*BaseHandler
	resolver *stock.Resolver
	events   stock.EventSource
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, resolver *stock.Resolver, events stock.EventSource) *StockHandler {
	return &StockHandler{BaseHandler: base, resolver: resolver, events: events}
}

// Resolve handles GET /stock/:articleId/:unitId
// Optional warehouseId query scopes to one site; omitted means company-wide.
func (h *StockHandler) Resolve(c *gin.Context) {
	articleID, ok := h.ParseIDParam(c, "articleId")
	if !ok {
		return
	}
	unitID, ok := h.ParseIDParam(c, "unitId")
	if !ok {
		return
	}
	warehouseID, ok := h.ParseOptionalIDQuery(c, "warehouseId")
	if !ok {
		return
	}

	result, err := h.resolver.ResolveStock(c.Request.Context(), stock.Request{
		ArticleID:   articleID,
		UnitID:      unitID,
		WarehouseID: warehouseID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockResult(result))
}

// ResolveBulk handles GET /stock
// Returns raw figures for every active article, one row per unit.
func (h *StockHandler) ResolveBulk(c *gin.Context) {
	warehouseID, ok := h.ParseOptionalIDQuery(c, "warehouseId")
	if !ok {
		return
	}

	result, err := h.resolver.ResolveStockBulk(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBulkResult(result))
}

// Movements handles GET /stock/movements?articleId=...
// Lists the signed movement events of one article, optionally restricted to a
// unit, a warehouse and an exclusive lower time bound (RFC 3339).
func (h *StockHandler) Movements(c *gin.Context) {
	articleID, ok := h.ParseIDQuery(c, "articleId")
	if !ok {
		return
	}
	unitID, ok := h.ParseOptionalIDQuery(c, "unitId")
	if !ok {
		return
	}
	warehouseID, ok := h.ParseOptionalIDQuery(c, "warehouseId")
	if !ok {
		return
	}

	var after *time.Time
	if val := c.Query("after"); val != "" {
		parsed, err := time.Parse(time.RFC3339, val)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid after format").
				WithDetail("expected", time.RFC3339))
			return
		}
		after = &parsed
	}

	events, err := h.events.Events(c.Request.Context(), stock.EventQuery{
		ArticleID:   articleID,
		UnitID:      unitID,
		WarehouseID: warehouseID,
		After:       after,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromEvents(events),
		TotalCount: len(events),
	})
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ResolveBulk)
	rg.GET("/movements", h.Movements)
	rg.GET("/:articleId/:unitId", h.Resolve)
}
