package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/hoacuong-agri/internal/application/analytics"
	"github.com/jhoicas/hoacuong-agri/internal/application/auth"
	"github.com/jhoicas/hoacuong-agri/internal/application/purchase"
	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/inbox"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ctrl        *workspace.Controller
	AuthUC      *auth.AuthUseCase
	DashboardUC *appanalytics.DashboardUseCase
	ReceiptUC   *purchase.ReceiptUseCase
	Inbox       *inbox.Inbox
	// Opcionales: solo algunos backends los ofrecen.
	FileContent  repository.FileContentReader
	RemoteTotals appanalytics.RemoteTotals
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	ctrl := deps.Ctrl

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, ctrl)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (Bearer Token de la sesión actual)
	protected := api.Group("/", AuthMiddleware(deps.AuthUC), BusyGuard(ctrl))
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/session", authHandler.Session)

	ws := NewWorkspaceHandler(ctrl, deps.Inbox)
	protected.Get("/notifications", ws.Notifications)
	protected.Put("/navigation", ws.Navigate)
	protected.Post("/data/reload", ws.Reload)
	protected.Put("/profile", ws.UpdateProfile)
	protected.Get("/settings", ws.GetSettings)
	protected.Put("/settings", RequirePermission(entity.PermViewSettings, ctrl), ws.UpdateSettings)
	protected.Get("/backup", RequirePermission(entity.PermViewSettings, ctrl), ws.Backup)
	protected.Post("/restore", RequirePermission(entity.PermViewSettings, ctrl), ws.Restore)

	// Reportes (antes que las colecciones: /purchases/:id/receipt)
	reports := NewReportHandler(ctrl, deps.DashboardUC, deps.ReceiptUC, deps.RemoteTotals)
	protected.Get("/dashboard", RequirePermission(entity.PermViewDashboard, ctrl), reports.Dashboard)
	protected.Get("/dashboard/reconcile",
		RequirePermission(entity.PermViewDashboard, ctrl),
		RequirePermission(entity.PermViewFinancials, ctrl),
		reports.Reconcile)
	protected.Get("/purchases/:id/receipt", RequirePermission(entity.PermViewPurchase, ctrl), reports.Receipt)
	protected.Get("/export.xlsx", reports.ExportXLSX)

	// Colecciones
	mountCollection(protected, "/areas",
		NewCollectionHandler[entity.PlantingArea](ctrl.Areas, func(a entity.PlantingArea, id string) entity.PlantingArea { a.ID = id; return a }),
		crudPermissions{entity.PermViewArea, entity.PermCreateArea, entity.PermUpdateArea, entity.PermDeleteArea}, ctrl)

	purchasePerms := crudPermissions{entity.PermViewPurchase, entity.PermCreatePurchase, entity.PermUpdatePurchase, entity.PermDeletePurchase}
	mountCollection(protected, "/purchases",
		NewCollectionHandler[entity.PurchaseTransaction](ctrl.Purchases, func(p entity.PurchaseTransaction, id string) entity.PurchaseTransaction { p.ID = id; return p }),
		purchasePerms, ctrl)
	mountCollection(protected, "/surveys",
		NewCollectionHandler[entity.SurveyRecord](ctrl.Surveys, func(s entity.SurveyRecord, id string) entity.SurveyRecord { s.ID = id; return s }),
		purchasePerms, ctrl)
	mountCollection(protected, "/contracts",
		NewCollectionHandler[entity.PurchaseContract](ctrl.Contracts, func(k entity.PurchaseContract, id string) entity.PurchaseContract { k.ID = id; return k }),
		purchasePerms, ctrl)

	mountCollection(protected, "/farming-logs",
		NewCollectionHandler[entity.FarmingActivity](ctrl.FarmingLogs, func(f entity.FarmingActivity, id string) entity.FarmingActivity { f.ID = id; return f }),
		crudPermissions{entity.PermViewFarming, entity.PermCreateFarming, entity.PermUpdateFarming, entity.PermDeleteFarming}, ctrl)

	mountCollection(protected, "/employees",
		NewCollectionHandler[entity.Employee](ctrl.Employees, func(e entity.Employee, id string) entity.Employee { e.ID = id; return e }).
			Presenting(entity.Employee.WithoutPassword),
		crudPermissions{entity.PermViewStaff, entity.PermCreateStaff, entity.PermUpdateStaff, entity.PermDeleteStaff}, ctrl)

	mountCollection(protected, "/linkage-statuses",
		NewCollectionHandler[entity.LinkageStatusOption](ctrl.LinkageStatuses, func(o entity.LinkageStatusOption, id string) entity.LinkageStatusOption { o.ID = id; return o }),
		crudPermissions{entity.PermViewArea, entity.PermViewSettings, entity.PermViewSettings, entity.PermViewSettings}, ctrl)

	// Documentos
	mountCollection(protected, "/folders",
		NewCollectionHandler[entity.Folder](ctrl.Folders, func(f entity.Folder, id string) entity.Folder { f.ID = id; return f }),
		crudPermissions{entity.PermViewDocuments, entity.PermManageDocuments, entity.PermManageDocuments, entity.PermManageDocuments}, ctrl)

	docs := NewDocumentHandler(ctrl, deps.FileContent)
	files := NewCollectionHandler[entity.SystemFile](ctrl.Files, nil)
	filesGroup := protected.Group("/files")
	filesGroup.Get("/", RequirePermission(entity.PermViewDocuments, ctrl), files.List)
	filesGroup.Get("/:id/content", RequirePermission(entity.PermViewDocuments, ctrl), docs.Content)
	filesGroup.Get("/:id", RequirePermission(entity.PermViewDocuments, ctrl), files.GetByID)
	filesGroup.Post("/", RequirePermission(entity.PermManageDocuments, ctrl), docs.Upload)
	filesGroup.Delete("/:id", RequirePermission(entity.PermManageDocuments, ctrl), files.Delete)
}
