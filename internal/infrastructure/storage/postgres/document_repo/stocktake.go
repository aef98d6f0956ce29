// Package document_repo provides PostgreSQL implementations for document
// repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/stocktake"
	"gestock/internal/infrastructure/storage/postgres"
)

const (
	stocktakeTable     = "doc_stocktakes"
	stocktakeLineTable = "doc_stocktake_lines"
)

var stocktakeCols = []string{
	"id", "deletion_mark", "version", "created_at", "updated_at",
	"number", "warehouse_id", "counted_at",
}

// StocktakeRepo implements stocktake.Repository.
type StocktakeRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStocktakeRepo creates a new stocktake repository.
func NewStocktakeRepo(txm *postgres.TxManager) *StocktakeRepo {
	return &StocktakeRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ stocktake.Repository = (*StocktakeRepo)(nil)

// Create inserts the document header.
func (r *StocktakeRepo) Create(ctx context.Context, doc *stocktake.Stocktake) error {
	q := r.builder.Insert(stocktakeTable).
		Columns(stocktakeCols...).
		Values(doc.ID, doc.DeletionMark, doc.Version, doc.CreatedAt, doc.UpdatedAt,
			doc.Number, doc.WarehouseID, doc.CountedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", stocktakeTable, err)
	}

	return nil
}

// SaveLines inserts the document lines.
func (r *StocktakeRepo) SaveLines(ctx context.Context, docID id.ID, lines []stocktake.Line) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.builder.Insert(stocktakeLineTable).
		Columns("stocktake_id", "line_id", "line_no", "article_code", "quantity")
	for _, line := range lines {
		q = q.Values(docID, line.LineID, line.LineNo, line.ArticleCode, line.Quantity)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", stocktakeLineTable, err)
	}

	return nil
}

// GetByID retrieves the document header.
func (r *StocktakeRepo) GetByID(ctx context.Context, docID id.ID) (*stocktake.Stocktake, error) {
	q := r.builder.Select(stocktakeCols...).
		From(stocktakeTable).
		Where(squirrel.Eq{"id": docID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc stocktake.Stocktake
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(stocktakeTable, docID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &doc, nil
}

// GetLines retrieves the document lines in order.
func (r *StocktakeRepo) GetLines(ctx context.Context, docID id.ID) ([]stocktake.Line, error) {
	q := r.builder.Select("line_id", "line_no", "article_code", "quantity").
		From(stocktakeLineTable).
		Where(squirrel.Eq{"stocktake_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stocktake.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// List returns documents newest first, optionally per warehouse.
func (r *StocktakeRepo) List(ctx context.Context, warehouseID *id.ID, limit, offset int) ([]stocktake.Stocktake, error) {
	q := r.builder.Select(stocktakeCols...).
		From(stocktakeTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("counted_at DESC")

	if warehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *warehouseID})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var docs []stocktake.Stocktake
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	return docs, nil
}
