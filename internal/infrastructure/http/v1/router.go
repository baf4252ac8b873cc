// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"slice/internal/app"
	appctx "slice/internal/core/context"
	"slice/internal/infrastructure/http/v1/handlers"
	"slice/internal/infrastructure/http/v1/middleware"
	"slice/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Services *app.Services
	Logger   *logger.Logger

	// Tokens validates bearer tokens.
	Tokens middleware.TokenValidator

	// Idempotency enables X-Idempotency-Key replay on POST when set.
	Idempotency middleware.IdempotencyStore

	// Checks are run by /health/ready.
	Checks map[string]handlers.Check
}

// Role sets allowed per route group. Admins pass every check.
var (
	anyRole      = []string{appctx.RoleCashier, appctx.RoleManager}
	managerRoles = []string{appctx.RoleManager}
	adminOnly    = []string{appctx.RoleAdmin}
)

// NewRouter builds the gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	router := gin.New()

	// Order matters: errors must be rendered inside recovery and logging.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	health := handlers.NewHealthHandler(cfg.Checks)
	router.GET("/health/live", health.Live)
	router.GET("/health/ready", health.Ready)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Tokens))
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	svc := cfg.Services

	registerCatalogRoutes(api, handlers.NewCatalogHandler(base, svc.Catalog, svc.Recipes))
	registerStockRoutes(api, handlers.NewStockHandler(base, svc.Stock))
	registerPOSRoutes(api, handlers.NewPOSHandler(base, svc.Sales, svc.Waste))
	registerPurchaseRoutes(api, handlers.NewPurchaseHandler(base, svc.Procurement))
	registerReconciliationRoutes(api, handlers.NewReconciliationHandler(base, svc.Reconciliation))
	registerTransferRoutes(api, handlers.NewTransferHandler(base, svc.Transfers))
	registerFinanceRoutes(api, handlers.NewFinanceHandler(base, svc.Ledger, svc.Reports))

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, h *handlers.CatalogHandler) {
	read := middleware.RequireRole(anyRole...)
	write := middleware.RequireRole(adminOnly...)

	rg.POST("/branches", write, h.CreateBranch)
	rg.GET("/branches", read, h.ListBranches)

	rg.POST("/items", write, h.AddItem)
	rg.GET("/items", read, h.ListItems)
	rg.GET("/items/:id", read, h.GetItem)
	rg.PUT("/items/:id", write, h.UpdateItem)

	rg.POST("/products", write, h.AddProduct)
	rg.GET("/products", read, h.ListProducts)
	rg.PUT("/products/:id/price", write, h.UpdatePrice)
	rg.PUT("/products/:id/availability", write, h.SetAvailability)
	rg.PUT("/products/:id/recipe", write, h.SetRecipe)
	rg.GET("/products/:id/recipe", read, h.GetRecipe)

	rg.GET("/branches/:branchId/menu", read, h.Menu)
	rg.GET("/branches/:branchId/products/:productId/max-cookable", read, h.MaxCookable)
}

func registerStockRoutes(rg *gin.RouterGroup, h *handlers.StockHandler) {
	rg.GET("/branches/:branchId/stock", middleware.RequireRole(anyRole...), h.ListBranch)
	rg.GET("/branches/:branchId/stock/low", middleware.RequireRole(anyRole...), h.ListLow)
	rg.PUT("/stock/:stockId/threshold", middleware.RequireRole(managerRoles...), h.SetThreshold)
}

func registerPOSRoutes(rg *gin.RouterGroup, h *handlers.POSHandler) {
	pos := middleware.RequireRole(anyRole...)

	rg.POST("/sales", pos, h.ProcessSale)
	rg.GET("/branches/:branchId/sales", pos, h.ListSales)
	rg.POST("/waste", pos, h.RecordWaste)
	rg.GET("/branches/:branchId/waste", pos, h.ListWaste)
}

func registerPurchaseRoutes(rg *gin.RouterGroup, h *handlers.PurchaseHandler) {
	mgr := middleware.RequireRole(managerRoles...)

	rg.POST("/purchases", mgr, h.Create)
	rg.GET("/purchases/:id", mgr, h.Get)
	rg.GET("/branches/:branchId/purchases", mgr, h.ListBranch)
}

func registerReconciliationRoutes(rg *gin.RouterGroup, h *handlers.ReconciliationHandler) {
	mgr := middleware.RequireRole(managerRoles...)

	rg.GET("/branches/:branchId/reconciliation", mgr, h.Sheet)
	rg.POST("/branches/:branchId/reconciliation", mgr, h.SubmitCount)
	rg.GET("/branches/:branchId/reconciliation/history", mgr, h.History)
	rg.POST("/reconciliation/adjustments", mgr, h.SaveAdjustment)
}

func registerTransferRoutes(rg *gin.RouterGroup, h *handlers.TransferHandler) {
	mgr := middleware.RequireRole(managerRoles...)

	rg.POST("/transfers", mgr, h.Request)
	rg.POST("/transfers/dispatch", mgr, h.Dispatch)
	rg.POST("/transfers/:id/approve", mgr, h.Approve)
	rg.POST("/transfers/:id/receive", mgr, h.Receive)
	rg.GET("/transfers/:id", mgr, h.Get)
	rg.GET("/transfers/:id/history", mgr, h.History)
	rg.GET("/branches/:branchId/transfers/outgoing", mgr, h.Outgoing)
	rg.GET("/branches/:branchId/transfers/incoming", mgr, h.Incoming)
}

func registerFinanceRoutes(rg *gin.RouterGroup, h *handlers.FinanceHandler) {
	admin := middleware.RequireRole(adminOnly...)

	rg.GET("/ledger", admin, h.Ledger)
	rg.GET("/reports/pnl", admin, h.PnL)
	rg.GET("/reports/branches", admin, h.BranchPerformance)
	rg.GET("/reports/expenses", admin, h.ExpenseBreakdown)
}
