// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/catalogs/variant"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/documents/sale"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/posting"
	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/extraction"
	"almacen/internal/infrastructure/http/v1/handlers"
	"almacen/internal/infrastructure/http/v1/middleware"
	"almacen/internal/infrastructure/storage/postgres"
	"almacen/internal/infrastructure/storage/postgres/catalog_repo"
	"almacen/internal/infrastructure/storage/postgres/document_repo"
	"almacen/internal/infrastructure/storage/postgres/ledger_repo"
	"almacen/internal/infrastructure/storage/postgres/report_repo"
	"almacen/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool.
	Pool *postgres.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// ReportCache caches computed reports; nil disables caching.
	ReportCache reports.Cache

	// ReportCacheTTL bounds how stale a cached report may be.
	ReportCacheTTL time.Duration

	// Extractor parses invoice text; nil disables the endpoint.
	Extractor *extraction.Extractor
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Wire repositories and services on the shared transaction manager.
	txm := postgres.NewTxManager(cfg.Pool)

	branchRepo := catalog_repo.NewBranchRepo(txm)
	variantRepo := catalog_repo.NewVariantRepo(txm)
	stockRepo := ledger_repo.NewRepo(txm)
	purchaseRepo := document_repo.NewPurchaseRepo(txm)
	saleRepo := document_repo.NewSaleRepo(txm)
	reportRepo := report_repo.NewRepo(txm)

	engine := posting.NewEngine(stockRepo, variantRepo)

	branchService := branch.NewService(branchRepo)
	variantService := variant.NewService(variantRepo)
	stockService := ledger.NewService(stockRepo, branchRepo, txm)
	purchaseService := purchase.NewService(purchaseRepo, branchRepo, engine, txm)
	saleService := sale.NewService(saleRepo, branchRepo, engine, txm)
	reportService := reports.NewService(reportRepo, cfg.ReportCache, cfg.ReportCacheTTL)

	branchHandler := handlers.NewBranchHandler(branchService)
	variantHandler := handlers.NewVariantHandler(variantService)
	stockHandler := handlers.NewStockHandler(stockService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	saleHandler := handlers.NewSaleHandler(saleService)
	reportsHandler := handlers.NewReportsHandler(reportService)

	api := router.Group("/api/v1")
	{
		branches := api.Group("/branches")
		{
			branches.POST("", branchHandler.Create)
			branches.GET("", branchHandler.List)
			branches.GET("/:id", branchHandler.Get)
			branches.PUT("/:id", branchHandler.Rename)
			branches.DELETE("/:id", branchHandler.Deactivate)
		}

		variants := api.Group("/variants")
		{
			variants.POST("", variantHandler.Create)
			variants.GET("", variantHandler.List)
			variants.GET("/:id", variantHandler.Get)
			variants.PUT("/:id", variantHandler.Update)
			variants.DELETE("/:id", variantHandler.Deactivate)
		}

		stock := api.Group("/stock")
		{
			stock.GET("/variants/:id", stockHandler.Breakdown)
			stock.GET("/branches/:id", stockHandler.ByBranch)
			stock.POST("/adjust", stockHandler.Adjust)
			stock.POST("/transfers", stockHandler.Transfer)
			stock.GET("/transfers", stockHandler.Transfers)
		}

		purchases := api.Group("/purchases")
		{
			purchases.POST("", purchaseHandler.Create)
			purchases.GET("", purchaseHandler.List)
			purchases.GET("/:id", purchaseHandler.Get)
			purchases.PUT("/:id", purchaseHandler.Update)
			purchases.DELETE("/:id", purchaseHandler.Delete)

			if cfg.Extractor != nil {
				extractionHandler := handlers.NewExtractionHandler(cfg.Extractor)
				purchases.POST("/extract", extractionHandler.Extract)
			}
		}

		sales := api.Group("/sales")
		{
			sales.POST("", saleHandler.Create)
			sales.GET("", saleHandler.List)
			sales.GET("/:id", saleHandler.Get)
			sales.PUT("/:id", saleHandler.Update)
			sales.POST("/:id/confirm", saleHandler.Confirm)
			sales.DELETE("/:id", saleHandler.Delete)
		}

		reportRoutes := api.Group("/reports")
		{
			reportRoutes.GET("/summary", reportsHandler.PeriodSummary)
			reportRoutes.GET("/branches", reportsHandler.BranchComparison)
			reportRoutes.GET("/low-stock", reportsHandler.LowStock)
		}
	}

	return router
}
