package dto

import (
	"github.com/shopspring/decimal"

	"gestock/internal/domain/catalogs/article"
	"gestock/internal/domain/catalogs/unit"
	"gestock/internal/domain/catalogs/warehouse"
)

// --- Articles ---

// CreateArticleRequest for creating articles.
type CreateArticleRequest struct {
	Code        string  `json:"code" binding:"required"`
	Designation string  `json:"designation" binding:"required"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
}

// ToEntity converts the request to a domain article.
func (r CreateArticleRequest) ToEntity() *article.Article {
	a := article.NewArticle(r.Code, r.Designation, r.Category)
	a.Description = r.Description
	return a
}

// ArticleResponse contains article fields.
type ArticleResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Designation  string  `json:"designation"`
	Category     string  `json:"category"`
	Description  *string `json:"description,omitempty"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromArticle creates ArticleResponse from the domain entity.
func FromArticle(a article.Article) ArticleResponse {
	return ArticleResponse{
		ID:           a.ID.String(),
		Code:         a.Code,
		Designation:  a.Designation,
		Category:     a.Category,
		Description:  a.Description,
		DeletionMark: a.DeletionMark,
		Version:      a.Version,
	}
}

// --- Units ---

// CreateUnitRequest for creating packaging units.
type CreateUnitRequest struct {
	ArticleID        string          `json:"articleId" binding:"required"`
	Designation      string          `json:"designation" binding:"required"`
	Level            int             `json:"level"`
	ConversionFactor decimal.Decimal `json:"conversionFactor"`
	ArticleCode      string          `json:"articleCode" binding:"required"`
}

// UnitResponse contains unit fields.
type UnitResponse struct {
	ID               string          `json:"id"`
	ArticleID        string          `json:"articleId"`
	Designation      string          `json:"designation"`
	Level            int             `json:"level"`
	ConversionFactor decimal.Decimal `json:"conversionFactor"`
	ArticleCode      string          `json:"articleCode"`
}

// FromUnit creates UnitResponse from the domain entity.
func FromUnit(u unit.Unit) UnitResponse {
	return UnitResponse{
		ID:               u.ID.String(),
		ArticleID:        u.ArticleID.String(),
		Designation:      u.Designation,
		Level:            u.Level,
		ConversionFactor: u.ConversionFactor,
		ArticleCode:      u.ArticleCode,
	}
}

// --- Warehouses ---

// CreateWarehouseRequest for creating warehouses.
type CreateWarehouseRequest struct {
	Code        string  `json:"code" binding:"required"`
	Designation string  `json:"designation" binding:"required"`
	Location    *string `json:"location"`
}

// ToEntity converts the request to a domain warehouse.
func (r CreateWarehouseRequest) ToEntity() *warehouse.Warehouse {
	w := warehouse.NewWarehouse(r.Code, r.Designation)
	w.Location = r.Location
	return w
}

// WarehouseResponse contains warehouse fields.
type WarehouseResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Designation  string  `json:"designation"`
	Location     *string `json:"location,omitempty"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromWarehouse creates WarehouseResponse from the domain entity.
func FromWarehouse(w warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:           w.ID.String(),
		Code:         w.Code,
		Designation:  w.Designation,
		Location:     w.Location,
		DeletionMark: w.DeletionMark,
		Version:      w.Version,
	}
}
