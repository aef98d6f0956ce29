// Package article provides the Article catalog.
// Articles are the sellable/stockable items all movements refer to.
package article

import (
	"context"

	"gestock/internal/core/apperror"
	"gestock/internal/core/entity"
)

// Article represents a stockable item.
// Once referenced by movements an article is only ever soft-deleted.
type Article struct {
	entity.Catalog

	// Category is a free-form grouping (family) used by listings
	Category string `db:"category" json:"category"`

	// Description is an optional detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewArticle creates a new Article with required fields.
func NewArticle(code, designation, category string) *Article {
	return &Article{
		Catalog:  entity.NewCatalog(code, designation),
		Category: category,
	}
}

// Validate implements entity.Validatable.
func (a *Article) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if a.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}

	return nil
}
