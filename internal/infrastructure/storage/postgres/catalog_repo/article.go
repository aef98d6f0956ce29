// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories. All queries go through the TxManager so repos work inside and
// outside transactions.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs/article"
	"gestock/internal/infrastructure/storage/postgres"
)

const articleTable = "cat_articles"

var articleCols = []string{
	"id", "deletion_mark", "version",
	"code", "designation", "category", "description",
}

// ArticleRepo implements article.Repository.
type ArticleRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewArticleRepo creates a new article repository.
func NewArticleRepo(txm *postgres.TxManager) *ArticleRepo {
	return &ArticleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ article.Repository = (*ArticleRepo)(nil)

func (r *ArticleRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(articleCols...).From(articleTable)
}

// Create inserts a new article.
func (r *ArticleRepo) Create(ctx context.Context, a *article.Article) error {
	q := r.builder.Insert(articleTable).
		Columns(articleCols...).
		Values(a.ID, a.DeletionMark, a.Version, a.Code, a.Designation, a.Category, a.Description)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", articleTable, err)
	}

	return nil
}

// GetByID retrieves an article by ID.
func (r *ArticleRepo) GetByID(ctx context.Context, articleID id.ID) (*article.Article, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": articleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var a article.Article
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(articleTable, articleID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &a, nil
}

// FindByCode retrieves an active article by code.
func (r *ArticleRepo) FindByCode(ctx context.Context, code string) (*article.Article, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var a article.Article
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(articleTable, code)
		}
		return nil, fmt.Errorf("find by code: %w", err)
	}

	return &a, nil
}

// ListActive returns all articles without a deletion mark, ordered by code.
func (r *ArticleRepo) ListActive(ctx context.Context) ([]article.Article, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var articles []article.Article
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &articles, sql, args...); err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}

	return articles, nil
}

// MarkDeleted soft-deletes an article.
func (r *ArticleRepo) MarkDeleted(ctx context.Context, articleID id.ID) error {
	q := r.builder.Update(articleTable).
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": articleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(articleTable, articleID.String())
	}

	return nil
}
