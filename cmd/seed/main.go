// Package main provides a CLI tool for creating the schema and seeding the
// database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"gestock/internal/core/id"
	"gestock/internal/core/types"
	"gestock/internal/domain/catalogs/article"
	"gestock/internal/domain/catalogs/unit"
	"gestock/internal/domain/catalogs/warehouse"
	"gestock/internal/domain/stocktake"
	"gestock/internal/infrastructure/storage/postgres"
	"gestock/internal/infrastructure/storage/postgres/catalog_repo"
	"gestock/internal/infrastructure/storage/postgres/document_repo"
	"gestock/internal/infrastructure/storage/postgres/register_repo"
	"gestock/pkg/logger"
	"gestock/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := ensureSchema(ctx, pool); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema ensured")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS cat_articles (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INT NOT NULL DEFAULT 1,
		code TEXT NOT NULL UNIQUE,
		designation TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS cat_units (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INT NOT NULL DEFAULT 1,
		article_id UUID NOT NULL REFERENCES cat_articles(id),
		designation TEXT NOT NULL,
		level INT NOT NULL,
		conversion_factor NUMERIC(15,6) NOT NULL,
		article_code TEXT NOT NULL UNIQUE,
		UNIQUE (article_id, level)
	)`,
	`CREATE TABLE IF NOT EXISTS cat_warehouses (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INT NOT NULL DEFAULT 1,
		code TEXT NOT NULL UNIQUE,
		designation TEXT NOT NULL,
		location TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS doc_stocktakes (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		number TEXT NOT NULL UNIQUE,
		warehouse_id UUID NOT NULL REFERENCES cat_warehouses(id),
		counted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS doc_stocktake_lines (
		line_id UUID PRIMARY KEY,
		stocktake_id UUID NOT NULL REFERENCES doc_stocktakes(id),
		line_no INT NOT NULL,
		article_code TEXT NOT NULL,
		quantity BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reg_count_snapshots (
		article_code TEXT NOT NULL,
		warehouse_id UUID NOT NULL REFERENCES cat_warehouses(id),
		quantity BIGINT NOT NULL,
		taken_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_count_snapshots_latest
		ON reg_count_snapshots (article_code, warehouse_id, taken_at DESC)`,
	`CREATE TABLE IF NOT EXISTS tr_receptions (
		line_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		article_id UUID NOT NULL REFERENCES cat_articles(id),
		unit_id UUID NOT NULL REFERENCES cat_units(id),
		warehouse_id UUID NOT NULL REFERENCES cat_warehouses(id),
		quantity BIGINT NOT NULL CHECK (quantity >= 0),
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tr_sales (
		line_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		article_id UUID NOT NULL REFERENCES cat_articles(id),
		unit_id UUID NOT NULL REFERENCES cat_units(id),
		warehouse_id UUID NOT NULL REFERENCES cat_warehouses(id),
		quantity BIGINT NOT NULL CHECK (quantity >= 0),
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tr_outbounds (
		line_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		article_id UUID NOT NULL REFERENCES cat_articles(id),
		unit_id UUID NOT NULL REFERENCES cat_units(id),
		warehouse_id UUID NOT NULL REFERENCES cat_warehouses(id),
		quantity BIGINT NOT NULL CHECK (quantity >= 0),
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tr_transfers (
		line_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		article_id UUID NOT NULL REFERENCES cat_articles(id),
		unit_id UUID NOT NULL REFERENCES cat_units(id),
		source_warehouse_id UUID NOT NULL REFERENCES cat_warehouses(id),
		dest_warehouse_id UUID NOT NULL REFERENCES cat_warehouses(id),
		quantity BIGINT NOT NULL CHECK (quantity >= 0),
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tr_returns (
		line_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		article_id UUID NOT NULL REFERENCES cat_articles(id),
		unit_id UUID NOT NULL REFERENCES cat_units(id),
		warehouse_id UUID NOT NULL REFERENCES cat_warehouses(id),
		quantity BIGINT NOT NULL CHECK (quantity >= 0),
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tr_adjustments (
		line_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		article_id UUID NOT NULL REFERENCES cat_articles(id),
		unit_id UUID NOT NULL REFERENCES cat_units(id),
		warehouse_id UUID NOT NULL REFERENCES cat_warehouses(id),
		quantity BIGINT NOT NULL CHECK (quantity >= 0),
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sys_sequences (
		key TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
}

func ensureSchema(ctx context.Context, pool *postgres.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txm := postgres.NewTxManager(pool)

	articleRepo := catalog_repo.NewArticleRepo(txm)
	unitRepo := catalog_repo.NewUnitRepo(txm)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txm)

	articleSvc := article.NewService(articleRepo)
	unitSvc := unit.NewService(unitRepo)
	warehouseSvc := warehouse.NewService(warehouseRepo)

	// Warehouses
	central := warehouse.NewWarehouse("WH-CENTRAL", "Central warehouse")
	north := warehouse.NewWarehouse("WH-NORTH", "North branch")
	for _, w := range []*warehouse.Warehouse{central, north} {
		if err := warehouseSvc.Create(ctx, w); err != nil {
			return fmt.Errorf("create warehouse %s: %w", w.Code, err)
		}
	}

	// Articles with packaging hierarchies
	widget := article.NewArticle("WID", "Widget", "Hardware")
	if err := articleSvc.Create(ctx, widget); err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	widgetPiece := unit.NewBaseUnit(widget.ID, "Piece", "WID-PC")
	widgetBox := unit.NewUnit(widget.ID, "Box", 1, decimal.NewFromInt(12), "WID-BOX")
	widgetCarton := unit.NewUnit(widget.ID, "Carton", 2, decimal.NewFromInt(8), "WID-CTN")
	for _, u := range []*unit.Unit{widgetPiece, widgetBox, widgetCarton} {
		if err := unitSvc.Create(ctx, u); err != nil {
			return fmt.Errorf("create unit %s: %w", u.ArticleCode, err)
		}
	}

	bolt := article.NewArticle("BLT", "Hex bolt M8", "Fasteners")
	if err := articleSvc.Create(ctx, bolt); err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	boltPiece := unit.NewBaseUnit(bolt.ID, "Piece", "BLT-PC")
	boltBag := unit.NewUnit(bolt.ID, "Bag", 1, decimal.NewFromInt(100), "BLT-BAG")
	for _, u := range []*unit.Unit{boltPiece, boltBag} {
		if err := unitSvc.Create(ctx, u); err != nil {
			return fmt.Errorf("create unit %s: %w", u.ArticleCode, err)
		}
	}

	// Movement history across every transaction table
	base := time.Now().UTC().Add(-30 * 24 * time.Hour)
	movements := []struct {
		table     string
		articleID id.ID
		unitID    id.ID
		warehouse id.ID
		qty       float64
		at        time.Time
	}{
		{"tr_receptions", widget.ID, widgetCarton.ID, central.ID, 5, base},
		{"tr_receptions", bolt.ID, boltBag.ID, central.ID, 20, base},
		{"tr_sales", widget.ID, widgetBox.ID, central.ID, 7, base.Add(48 * time.Hour)},
		{"tr_sales", bolt.ID, boltPiece.ID, central.ID, 250, base.Add(72 * time.Hour)},
		{"tr_outbounds", widget.ID, widgetPiece.ID, central.ID, 3, base.Add(96 * time.Hour)},
		{"tr_returns", widget.ID, widgetBox.ID, central.ID, 1, base.Add(120 * time.Hour)},
		{"tr_adjustments", bolt.ID, boltPiece.ID, central.ID, 15, base.Add(144 * time.Hour)},
	}
	for _, m := range movements {
		sql := fmt.Sprintf(
			`INSERT INTO %s (article_id, unit_id, warehouse_id, quantity, occurred_at)
			 VALUES ($1, $2, $3, $4, $5)`, m.table)
		_, err := pool.Exec(ctx, sql,
			m.articleID, m.unitID, m.warehouse,
			types.NewQuantityFromFloat64(m.qty).Int64Scaled(), m.at)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", m.table, err)
		}
	}

	// Inter-warehouse transfer: 2 boxes of widgets from central to north
	_, err := pool.Exec(ctx,
		`INSERT INTO tr_transfers (article_id, unit_id, source_warehouse_id, dest_warehouse_id, quantity, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		widget.ID, widgetBox.ID, central.ID, north.ID,
		types.NewQuantityFromFloat64(2).Int64Scaled(), base.Add(168*time.Hour))
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}

	// One physical count at the north branch
	stocktakeRepo := document_repo.NewStocktakeRepo(txm)
	snapshotRepo := register_repo.NewSnapshotRepo(txm)
	numbers := numerator.New(txm)
	stocktakeSvc := stocktake.NewService(stocktakeRepo, unitRepo, snapshotRepo, numbers, txm)

	// One code per article: a document counting the same article under two
	// packaging codes is rejected, the snapshots would tie on taken_at.
	count := stocktake.NewStocktake(north.ID, base.Add(200*time.Hour))
	count.AddLine("WID-BOX", types.NewQuantityFromFloat64(2))
	count.AddLine("BLT-PC", types.NewQuantityFromFloat64(40))
	if err := stocktakeSvc.Create(ctx, count); err != nil {
		return fmt.Errorf("create stocktake: %w", err)
	}

	log.Infow("demo data seeded",
		"warehouses", 2,
		"articles", 2,
		"stocktake", count.Number,
	)
	return nil
}
