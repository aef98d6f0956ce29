// Package unit provides the Unit catalog.
// Every article owns a small hierarchy of packaging units: level 0 is the
// base unit, each higher level packs a whole number of the level below
// (1 carton = 12 boxes = 144 pieces).
package unit

import (
	"context"

	"github.com/shopspring/decimal"

	"gestock/internal/core/apperror"
	"gestock/internal/core/entity"
	"gestock/internal/core/id"
)

// Unit represents one packaging level of an article.
type Unit struct {
	entity.BaseEntity

	// ArticleID is the owning article
	ArticleID id.ID `db:"article_id" json:"articleId"`

	// Designation is the display name ("Piece", "Box", "Carton")
	Designation string `db:"designation" json:"designation"`

	// Level is the packaging level: 0 = base unit, increasing for larger
	// packaging. Levels of one article are contiguous starting at 0.
	Level int `db:"level" json:"level"`

	// ConversionFactor is how many units of level-1 compose one unit of
	// this level. Defined as 1 for the base unit.
	ConversionFactor decimal.Decimal `db:"conversion_factor" json:"conversionFactor"`

	// ArticleCode is the per-packaging-level SKU. Physical counts record
	// quantities against this code.
	ArticleCode string `db:"article_code" json:"articleCode"`
}

// NewUnit creates a unit for an article.
func NewUnit(articleID id.ID, designation string, level int, factor decimal.Decimal, articleCode string) *Unit {
	return &Unit{
		BaseEntity:       entity.NewBaseEntity(),
		ArticleID:        articleID,
		Designation:      designation,
		Level:            level,
		ConversionFactor: factor,
		ArticleCode:      articleCode,
	}
}

// NewBaseUnit creates the level-0 unit of an article.
func NewBaseUnit(articleID id.ID, designation, articleCode string) *Unit {
	return NewUnit(articleID, designation, 0, decimal.NewFromInt(1), articleCode)
}

// IsBase reports whether this is the level-0 unit.
func (u *Unit) IsBase() bool {
	return u.Level == 0
}

// Validate implements entity.Validatable.
func (u *Unit) Validate(ctx context.Context) error {
	if id.IsNil(u.ArticleID) {
		return apperror.NewValidation("article is required").
			WithDetail("field", "articleId")
	}

	if u.Designation == "" {
		return apperror.NewValidation("designation is required").
			WithDetail("field", "designation")
	}

	if u.Level < 0 {
		return apperror.NewValidation("level cannot be negative").
			WithDetail("field", "level")
	}

	if u.ArticleCode == "" {
		return apperror.NewValidation("article code is required").
			WithDetail("field", "articleCode")
	}

	// The base unit factor is fixed at 1; higher levels must be positive.
	if u.Level == 0 && !u.ConversionFactor.Equal(decimal.NewFromInt(1)) {
		return apperror.NewValidation("base unit conversion factor must be 1").
			WithDetail("field", "conversionFactor")
	}

	if u.Level > 0 && !u.ConversionFactor.IsPositive() {
		return apperror.NewInvalidConversionFactor(u.ArticleID, u.ID, u.ConversionFactor.String())
	}

	return nil
}
