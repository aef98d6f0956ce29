package stocktake

import (
	"context"
	"fmt"
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/core/tx"
	"gestock/internal/domain/catalogs/unit"
	"gestock/pkg/logger"
	"gestock/pkg/numerator"
)

// NumberPrefix for stocktake document numbers.
const NumberPrefix = "ST"

// Service provides business operations for stocktake documents.
type Service struct {
	repo      Repository
	units     unit.Repository
	snapshots SnapshotWriter
	numbers   numerator.Generator
	txm       tx.Manager
}

// NewService creates a stocktake service. txm may be nil in tests.
func NewService(
	repo Repository,
	units unit.Repository,
	snapshots SnapshotWriter,
	numbers numerator.Generator,
	txm tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		units:     units,
		snapshots: snapshots,
		numbers:   numbers,
		txm:       txm,
	}
}

func (s *Service) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txm == nil {
		return fn(ctx)
	}
	return s.txm.RunInTransaction(ctx, fn)
}

// Create validates, numbers and persists a count document, and appends one
// snapshot per line in the same transaction. This is the only writer of
// snapshot data in the system.
func (s *Service) Create(ctx context.Context, doc *Stocktake) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	// Every counted code must resolve to a known unit now; a code that no
	// longer resolves at read time would poison anchoring for its article.
	// One article may be counted under at most one code per document: two
	// lines of the same article would append snapshots with an identical
	// (article, warehouse, taken_at) key and the latest-count readers would
	// keep an arbitrary one of them.
	countedCodes := make(map[id.ID]string, len(doc.Lines))
	for _, line := range doc.Lines {
		u, err := s.units.FindByArticleCode(ctx, line.ArticleCode)
		if err != nil {
			return apperror.NewValidation("unknown article code").
				WithDetail("articleCode", line.ArticleCode).
				WithCause(err)
		}
		if prev, counted := countedCodes[u.ArticleID]; counted {
			return apperror.NewValidation("article counted under multiple codes").
				WithDetail("articleCode", line.ArticleCode).
				WithDetail("conflictsWith", prev)
		}
		countedCodes[u.ArticleID] = line.ArticleCode
	}

	snapshots := make([]Snapshot, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		snapshots = append(snapshots, Snapshot{
			ArticleCode: line.ArticleCode,
			WarehouseID: doc.WarehouseID,
			Quantity:    line.Quantity,
			TakenAt:     doc.CountedAt,
		})
	}

	err := s.inTransaction(ctx, func(ctx context.Context) error {
		// Number allocation shares the document transaction: a rolled-back
		// create releases its number instead of burning it.
		if doc.Number == "" {
			number, err := s.numbers.NextNumber(ctx, NumberPrefix, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("generate number: %w", err)
			}
			doc.Number = number
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.snapshots.Append(ctx, snapshots); err != nil {
			return fmt.Errorf("append snapshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stocktake created",
		"id", doc.ID,
		"number", doc.Number,
		"warehouse_id", doc.WarehouseID,
		"lines", len(doc.Lines),
	)
	return nil
}

// GetByID retrieves a stocktake with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Stocktake, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List returns recent stocktakes, optionally filtered by warehouse.
func (s *Service) List(ctx context.Context, warehouseID *id.ID, limit, offset int) ([]Stocktake, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return s.repo.List(ctx, warehouseID, limit, offset)
}
