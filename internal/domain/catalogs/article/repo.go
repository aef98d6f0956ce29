package article

import (
	"context"

	"gestock/internal/core/id"
)

// Repository defines the interface for Article persistence.
type Repository interface {
	Create(ctx context.Context, a *Article) error
	GetByID(ctx context.Context, articleID id.ID) (*Article, error)
	FindByCode(ctx context.Context, code string) (*Article, error)

	// ListActive returns all articles without a deletion mark, ordered by code.
	ListActive(ctx context.Context) ([]Article, error)

	// MarkDeleted soft-deletes an article (movements keep referencing it).
	MarkDeleted(ctx context.Context, articleID id.ID) error
}
