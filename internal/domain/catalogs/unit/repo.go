package unit

import (
	"context"

	"gestock/internal/core/id"
)

// Repository defines the interface for Unit persistence.
type Repository interface {
	Create(ctx context.Context, u *Unit) error
	GetByID(ctx context.Context, unitID id.ID) (*Unit, error)

	// ListByArticle returns all units of an article ordered by level
	// ascending. The unit graph is built from this ordering.
	ListByArticle(ctx context.Context, articleID id.ID) ([]Unit, error)

	// ListAll returns every unit ordered by (article_id, level); the bulk
	// resolver groups them per article in one pass.
	ListAll(ctx context.Context) ([]Unit, error)

	// FindByArticleCode resolves a per-level SKU to its unit.
	FindByArticleCode(ctx context.Context, articleCode string) (*Unit, error)
}
