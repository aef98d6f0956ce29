// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/domain/catalogs/article"
	"gestock/internal/domain/catalogs/unit"
	"gestock/internal/domain/catalogs/warehouse"
	"gestock/internal/domain/reports"
	"gestock/internal/domain/stock"
	"gestock/internal/domain/stocktake"
	"gestock/internal/infrastructure/http/v1/handlers"
	"gestock/internal/infrastructure/http/v1/middleware"
	"gestock/internal/infrastructure/storage/postgres"
	"gestock/internal/infrastructure/storage/postgres/catalog_repo"
	"gestock/internal/infrastructure/storage/postgres/document_repo"
	"gestock/internal/infrastructure/storage/postgres/register_repo"
	"gestock/pkg/logger"
	"gestock/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Version reported by the info endpoint
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Gzip())

	txm := postgres.NewTxManager(cfg.Pool)

	// Repositories
	articleRepo := catalog_repo.NewArticleRepo(txm)
	unitRepo := catalog_repo.NewUnitRepo(txm)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txm)
	stocktakeRepo := document_repo.NewStocktakeRepo(txm)
	snapshotRepo := register_repo.NewSnapshotRepo(txm)
	bulkRepo := register_repo.NewBulkRepo(txm)

	combined, err := register_repo.NewCombinedSource(txm)
	if err != nil {
		return nil, err
	}

	// Services
	articleService := article.NewService(articleRepo)
	unitService := unit.NewService(unitRepo)
	warehouseService := warehouse.NewService(warehouseRepo)
	// The numerator goes through the TxManager so number allocation joins the
	// document transaction instead of running on a pool connection.
	numbers := numerator.New(txm)
	stocktakeService := stocktake.NewService(stocktakeRepo, unitRepo, snapshotRepo, numbers, txm)
	resolver := stock.NewResolver(articleRepo, unitRepo, combined, bulkRepo, snapshotRepo, txm)
	reportsService := reports.NewService(resolver, articleRepo, unitRepo)

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	base := handlers.NewBaseHandler()
	api := router.Group("/api/v1")
	{
		catalogs := api.Group("/catalog")
		handlers.NewArticleHandler(base, articleService).RegisterRoutes(catalogs.Group("/articles"))
		handlers.NewUnitHandler(base, unitService).RegisterRoutes(catalogs.Group("/units"))
		handlers.NewWarehouseHandler(base, warehouseService).RegisterRoutes(catalogs.Group("/warehouses"))

		docs := api.Group("/document")
		handlers.NewStocktakeHandler(base, stocktakeService).RegisterRoutes(docs.Group("/stocktakes"))

		handlers.NewStockHandler(base, resolver, combined).RegisterRoutes(api.Group("/stock"))
		handlers.NewReportsHandler(base, reportsService).RegisterRoutes(api.Group("/reports"))
	}

	return router, nil
}
