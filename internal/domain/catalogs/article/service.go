package article

import (
	"context"
	"fmt"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/pkg/logger"
)

// Service provides business logic for the Article catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Article service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new article.
func (s *Service) Create(ctx context.Context, a *Article) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.FindByCode(ctx, a.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("article", "code", a.Code)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return fmt.Errorf("create article: %w", err)
	}

	logger.Info(ctx, "article created", "id", a.ID, "code", a.Code)
	return nil
}

// GetByID retrieves an article by id.
func (s *Service) GetByID(ctx context.Context, articleID id.ID) (*Article, error) {
	return s.repo.GetByID(ctx, articleID)
}

// ListActive returns all non-deleted articles.
func (s *Service) ListActive(ctx context.Context) ([]Article, error) {
	return s.repo.ListActive(ctx)
}

// Delete soft-deletes an article.
func (s *Service) Delete(ctx context.Context, articleID id.ID) error {
	if err := s.repo.MarkDeleted(ctx, articleID); err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}
	logger.Info(ctx, "article soft-deleted", "id", articleID)
	return nil
}
