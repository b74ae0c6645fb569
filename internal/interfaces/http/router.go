package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Importaciones-api/internal/application/analytics"
	"github.com/jhoicas/Importaciones-api/internal/application/auth"
	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/application/inventory"
	"github.com/jhoicas/Importaciones-api/internal/application/usecase"
	"github.com/jhoicas/Importaciones-api/internal/domain/policy"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	WorkflowUC  *document.WorkflowUseCase
	ExportUC    *document.ExportUseCase
	FileUC      *document.FileUseCase
	CategoryUC  *usecase.CategoryUseCase
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	RecordUC    *inventory.RecordMovementUseCase
	QueryUC     *inventory.QueryUseCase
	ReconcileUC *inventory.ReconcileUseCase
	DashboardUC *analytics.DashboardUseCase
	Policy      *policy.Policy
	Denylist    RevocationChecker // nil si Redis está desactivado
	JWTSecret   string
	Log         *logger.Logger

	SignInRatePerMinute int
	SignInBurst         int
	LowStockLimit       int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	pol := deps.Policy
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/sign-up", authHandler.SignUp)
	authGroup.Post("/sign-in", RateLimitByIP(deps.SignInRatePerMinute, deps.SignInBurst), authHandler.SignIn)

	// Rutas protegidas (requieren Bearer Token)
	authn := AuthMiddleware(deps.JWTSecret, deps.Denylist)
	authGroup.Post("/sign-out", authn, authHandler.SignOut)
	authGroup.Get("/me", authn, authHandler.Me)

	protected := api.Group("/", authn)

	// Perfil
	userHandler := NewUserHandler(deps.UserUC, log)
	protected.Get("/profile", userHandler.GetProfile)
	protected.Put("/profile", userHandler.UpdateProfile)
	protected.Get("/users/approvers", userHandler.ListApprovers)

	// Documentos: la autorización por estado y relación la aplica el caso de uso.
	docHandler := NewDocumentHandler(deps.WorkflowUC, deps.ExportUC, deps.FileUC, log)
	docs := protected.Group("/documents")
	docs.Post("/", docHandler.Create)
	docs.Get("/", docHandler.List)
	docs.Get("/export.xlsx", docHandler.ExportXLSX)
	docs.Get("/:id", docHandler.GetByID)
	docs.Put("/:id", docHandler.Update)
	docs.Delete("/:id", docHandler.Delete)
	docs.Post("/:id/submit", docHandler.Submit)
	docs.Post("/:id/approve", docHandler.Approve)
	docs.Post("/:id/reject", docHandler.Reject)
	docs.Get("/:id/history", docHandler.History)
	docs.Get("/:id/actions", docHandler.Actions)
	docs.Get("/:id/pdf", docHandler.DownloadPDF)
	docs.Get("/:id/xml", docHandler.DownloadXML)
	docs.Post("/:id/files", docHandler.UploadFile)
	docs.Get("/:id/files", docHandler.ListFiles)
	docs.Get("/:id/files/:fileId/content", docHandler.DownloadFile)
	docs.Delete("/:id/files/:fileId", docHandler.DeleteFile)

	// Maestros: lectura para todos, escritura Admin/Finance.
	canView := RequirePermission(pol, policy.ResourceMaster, policy.ActView)
	canCreate := RequirePermission(pol, policy.ResourceMaster, policy.ActCreate)
	canUpdate := RequirePermission(pol, policy.ResourceMaster, policy.ActUpdate)
	canDelete := RequirePermission(pol, policy.ResourceMaster, policy.ActDelete)

	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	categories := protected.Group("/categories")
	categories.Post("/", canCreate, categoryHandler.Create)
	categories.Get("/", canView, categoryHandler.List)
	categories.Get("/:id", canView, categoryHandler.GetByID)
	categories.Put("/:id", canUpdate, categoryHandler.Update)

	productHandler := NewProductHandler(deps.ProductUC, log)
	products := protected.Group("/products")
	products.Post("/", canCreate, productHandler.Create)
	products.Get("/", canView, productHandler.List)
	products.Get("/:id", canView, productHandler.GetByID)
	products.Put("/:id", canUpdate, productHandler.Update)
	products.Delete("/:id", canDelete, productHandler.Deactivate)

	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, log)
	warehouses := protected.Group("/warehouses")
	warehouses.Post("/", canCreate, warehouseHandler.Create)
	warehouses.Get("/", canView, warehouseHandler.List)
	warehouses.Get("/:id", canView, warehouseHandler.GetByID)
	warehouses.Put("/:id", canUpdate, warehouseHandler.Update)
	warehouses.Delete("/:id", canDelete, warehouseHandler.Deactivate)

	// Inventario
	invView := RequirePermission(pol, policy.ResourceInventory, policy.ActView)
	inventoryHandler := NewInventoryHandler(deps.RecordUC, deps.QueryUC, deps.ReconcileUC, deps.LowStockLimit, log)
	inv := protected.Group("/inventory")
	inv.Post("/movements", RequirePermission(pol, policy.ResourceInventory, policy.ActCreate), inventoryHandler.RecordMovement)
	inv.Get("/movements", invView, inventoryHandler.ListMovements)
	inv.Get("/movements/:id", invView, inventoryHandler.GetMovement)
	inv.Get("/balances", invView, inventoryHandler.ListBalances)
	inv.Get("/balances/export.xlsx", invView, inventoryHandler.ExportBalances)
	inv.Get("/low-stock", invView, inventoryHandler.LowStock)
	inv.Post("/reconcile", RequirePermission(pol, policy.ResourceInventory, policy.ActReconcile), inventoryHandler.Reconcile)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, log)
	protected.Get("/dashboard/summary", RequirePermission(pol, policy.ResourceDashboard, policy.ActView), dashboardHandler.GetSummary)
}
