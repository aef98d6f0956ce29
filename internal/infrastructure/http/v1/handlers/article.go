package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/domain/catalogs/article"
	"gestock/internal/infrastructure/http/v1/dto"
)

// ArticleHandler handles HTTP requests for the Article catalog.
type ArticleHandler struct {
	*BaseHandler
	service *article.Service
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(base *BaseHandler, service *article.Service) *ArticleHandler {
	return &ArticleHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req dto.CreateArticleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), a); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, a.ID)
}

// GetByID handles GET /catalog/articles/:id
func (h *ArticleHandler) GetByID(c *gin.Context) {
	articleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), articleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromArticle(*a))
}

// List handles GET /catalog/articles
func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ArticleResponse, len(articles))
	for i, a := range articles {
		items[i] = dto.FromArticle(a)
	}

	h.OK(c, dto.ListResponse{Items: items, TotalCount: len(items)})
}

// Delete handles DELETE /catalog/articles/:id (soft delete)
func (h *ArticleHandler) Delete(c *gin.Context) {
	articleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), articleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers article routes.
func (h *ArticleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.DELETE("/:id", h.Delete)
}
