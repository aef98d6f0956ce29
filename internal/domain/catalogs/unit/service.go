package unit

import (
	"context"
	"fmt"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/pkg/logger"
)

// Service provides business logic for the Unit catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Unit service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new unit.
// Level contiguity is enforced here: a unit of level N requires the article
// to already have levels 0..N-1.
func (s *Service) Create(ctx context.Context, u *Unit) error {
	if err := u.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.ListByArticle(ctx, u.ArticleID)
	if err != nil {
		return fmt.Errorf("list units: %w", err)
	}

	for _, e := range existing {
		if e.Level == u.Level {
			return apperror.NewConflict("article already has a unit at this level").
				WithDetail("level", u.Level)
		}
		if e.ArticleCode == u.ArticleCode {
			return apperror.NewDuplicate("unit", "articleCode", u.ArticleCode)
		}
	}

	if u.Level != len(existing) {
		return apperror.NewValidation("unit levels must be contiguous starting at 0").
			WithDetail("level", u.Level).
			WithDetail("expected", len(existing))
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return fmt.Errorf("create unit: %w", err)
	}

	logger.Info(ctx, "unit created",
		"id", u.ID,
		"article_id", u.ArticleID,
		"level", u.Level,
		"article_code", u.ArticleCode,
	)
	return nil
}

// GetByID retrieves a unit by id.
func (s *Service) GetByID(ctx context.Context, unitID id.ID) (*Unit, error) {
	return s.repo.GetByID(ctx, unitID)
}

// ListByArticle returns the unit hierarchy of an article, base first.
func (s *Service) ListByArticle(ctx context.Context, articleID id.ID) ([]Unit, error) {
	return s.repo.ListByArticle(ctx, articleID)
}

// FindByArticleCode resolves a per-level SKU.
func (s *Service) FindByArticleCode(ctx context.Context, articleCode string) (*Unit, error) {
	return s.repo.FindByArticleCode(ctx, articleCode)
}
