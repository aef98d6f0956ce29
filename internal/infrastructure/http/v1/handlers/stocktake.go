package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/domain/stocktake"
	"gestock/internal/infrastructure/http/v1/dto"
)

// StocktakeHandler handles HTTP requests for physical count documents.
type StocktakeHandler struct {
	*BaseHandler
	service *stocktake.Service
}

// NewStocktakeHandler creates a new stocktake handler.
func NewStocktakeHandler(base *BaseHandler, service *stocktake.Service) *StocktakeHandler {
	return &StocktakeHandler{BaseHandler: base, service: service}
}

// Create handles POST /document/stocktakes
func (h *StocktakeHandler) Create(c *gin.Context) {
	var req dto.CreateStocktakeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc.ID)
}

// GetByID handles GET /document/stocktakes/:id
func (h *StocktakeHandler) GetByID(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStocktake(doc))
}

// List handles GET /document/stocktakes
func (h *StocktakeHandler) List(c *gin.Context) {
	warehouseID, ok := h.ParseOptionalIDQuery(c, "warehouseId")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	docs, err := h.service.List(c.Request.Context(), warehouseID, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StocktakeResponse, len(docs))
	for i := range docs {
		items[i] = dto.FromStocktake(&docs[i])
	}

	h.OK(c, dto.ListResponse{Items: items, TotalCount: len(items)})
}

// RegisterRoutes registers stocktake routes.
func (h *StocktakeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
}
