package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs/unit"
	"gestock/internal/infrastructure/http/v1/dto"
)

// UnitHandler handles HTTP requests for the Unit catalog.
type UnitHandler struct {
	*BaseHandler
	service *unit.Service
}

// NewUnitHandler creates a new unit handler.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHandler {
	return &UnitHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/units
func (h *UnitHandler) Create(c *gin.Context) {
	var req dto.CreateUnitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	articleID, err := id.Parse(req.ArticleID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid articleId format"))
		return
	}

	u := unit.NewUnit(articleID, req.Designation, req.Level, req.ConversionFactor, req.ArticleCode)
	if err := h.service.Create(c.Request.Context(), u); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, u.ID)
}

// ListByArticle handles GET /catalog/units?articleId=...
func (h *UnitHandler) ListByArticle(c *gin.Context) {
	articleIDStr := c.Query("articleId")
	if articleIDStr == "" {
		h.Error(c, apperror.NewValidation("articleId is required"))
		return
	}

	articleID, err := id.Parse(articleIDStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid articleId format"))
		return
	}

	units, err := h.service.ListByArticle(c.Request.Context(), articleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.UnitResponse, len(units))
	for i, u := range units {
		items[i] = dto.FromUnit(u)
	}

	h.OK(c, dto.ListResponse{Items: items, TotalCount: len(items)})
}

// Resolve handles GET /catalog/units/resolve/:articleCode
func (h *UnitHandler) Resolve(c *gin.Context) {
	u, err := h.service.FindByArticleCode(c.Request.Context(), c.Param("articleCode"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUnit(*u))
}

// RegisterRoutes registers unit routes.
func (h *UnitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.ListByArticle)
	rg.GET("/resolve/:articleCode", h.Resolve)
}
