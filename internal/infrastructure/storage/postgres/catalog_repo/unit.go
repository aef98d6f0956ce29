package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs/unit"
	"gestock/internal/infrastructure/storage/postgres"
)

const unitTable = "cat_units"

var unitCols = []string{
	"id", "deletion_mark", "version",
	"article_id", "designation", "level", "conversion_factor", "article_code",
}

// UnitRepo implements unit.Repository.
type UnitRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewUnitRepo creates a new unit repository.
func NewUnitRepo(txm *postgres.TxManager) *UnitRepo {
	return &UnitRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ unit.Repository = (*UnitRepo)(nil)

func (r *UnitRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(unitCols...).From(unitTable)
}

// Create inserts a new unit.
func (r *UnitRepo) Create(ctx context.Context, u *unit.Unit) error {
	q := r.builder.Insert(unitTable).
		Columns(unitCols...).
		Values(u.ID, u.DeletionMark, u.Version,
			u.ArticleID, u.Designation, u.Level, u.ConversionFactor, u.ArticleCode)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", unitTable, err)
	}

	return nil
}

// GetByID retrieves a unit by ID.
func (r *UnitRepo) GetByID(ctx context.Context, unitID id.ID) (*unit.Unit, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": unitID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u unit.Unit
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(unitTable, unitID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &u, nil
}

// ListByArticle returns the units of an article ordered by level ascending.
// The unit graph is built from this ordering.
func (r *UnitRepo) ListByArticle(ctx context.Context, articleID id.ID) ([]unit.Unit, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"article_id": articleID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("level")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var units []unit.Unit
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &units, sql, args...); err != nil {
		return nil, fmt.Errorf("list by article: %w", err)
	}

	return units, nil
}

// ListAll returns every unit ordered by (article_id, level).
func (r *UnitRepo) ListAll(ctx context.Context) ([]unit.Unit, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("article_id", "level")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var units []unit.Unit
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &units, sql, args...); err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}

	return units, nil
}

// FindByArticleCode resolves a per-level SKU to its unit.
func (r *UnitRepo) FindByArticleCode(ctx context.Context, articleCode string) (*unit.Unit, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"article_code": articleCode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u unit.Unit
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(unitTable, articleCode)
		}
		return nil, fmt.Errorf("find by article code: %w", err)
	}

	return &u, nil
}
