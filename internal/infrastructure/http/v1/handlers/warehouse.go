package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/domain/catalogs/warehouse"
	"gestock/internal/infrastructure/http/v1/dto"
)

// WarehouseHandler handles HTTP requests for the Warehouse catalog.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), w); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, w.ID)
}

// GetByID handles GET /catalog/warehouses/:id
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	warehouseID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	w, err := h.service.GetByID(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWarehouse(*w))
}

// List handles GET /catalog/warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	warehouses, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.WarehouseResponse, len(warehouses))
	for i, w := range warehouses {
		items[i] = dto.FromWarehouse(w)
	}

	h.OK(c, dto.ListResponse{Items: items, TotalCount: len(items)})
}

// RegisterRoutes registers warehouse routes.
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
}
