package dto

import (
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/core/types"
	"gestock/internal/domain/stocktake"
)

// CreateStocktakeRequest for recording a physical count.
type CreateStocktakeRequest struct {
	WarehouseID string                 `json:"warehouseId" binding:"required"`
	CountedAt   time.Time              `json:"countedAt" binding:"required"`
	Number      string                 `json:"number"`
	Lines       []StocktakeLineRequest `json:"lines" binding:"required"`
}

// StocktakeLineRequest is one counted line.
type StocktakeLineRequest struct {
	ArticleCode string         `json:"articleCode" binding:"required"`
	Quantity    types.Quantity `json:"quantity"`
}

// ToEntity converts the request to a domain stocktake.
func (r CreateStocktakeRequest) ToEntity() (*stocktake.Stocktake, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouseId format").
			WithDetail("warehouseId", r.WarehouseID)
	}

	doc := stocktake.NewStocktake(warehouseID, r.CountedAt)
	doc.Number = r.Number
	for _, line := range r.Lines {
		doc.AddLine(line.ArticleCode, line.Quantity)
	}
	return doc, nil
}

// StocktakeResponse contains stocktake document fields.
type StocktakeResponse struct {
	ID          string                  `json:"id"`
	Number      string                  `json:"number"`
	WarehouseID string                  `json:"warehouseId"`
	CountedAt   time.Time               `json:"countedAt"`
	CreatedAt   time.Time               `json:"createdAt"`
	Lines       []StocktakeLineResponse `json:"lines,omitempty"`
}

// StocktakeLineResponse is one counted line.
type StocktakeLineResponse struct {
	LineNo      int            `json:"lineNo"`
	ArticleCode string         `json:"articleCode"`
	Quantity    types.Quantity `json:"quantity"`
}

// FromStocktake creates StocktakeResponse from the domain document.
func FromStocktake(doc *stocktake.Stocktake) StocktakeResponse {
	resp := StocktakeResponse{
		ID:          doc.ID.String(),
		Number:      doc.Number,
		WarehouseID: doc.WarehouseID.String(),
		CountedAt:   doc.CountedAt,
		CreatedAt:   doc.CreatedAt,
	}
	for _, line := range doc.Lines {
		resp.Lines = append(resp.Lines, StocktakeLineResponse{
			LineNo:      line.LineNo,
			ArticleCode: line.ArticleCode,
			Quantity:    line.Quantity,
		})
	}
	return resp
}
