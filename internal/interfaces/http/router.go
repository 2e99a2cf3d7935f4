package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/application/auth"
	"github.com/jhoicas/hub-portal/internal/application/dock"
	"github.com/jhoicas/hub-portal/internal/application/draft"
	"github.com/jhoicas/hub-portal/internal/application/prenote"
	appvs "github.com/jhoicas/hub-portal/internal/application/viewstate"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Views     *appvs.Controller
	PreNoteUC *prenote.UseCase
	DockUC    *dock.UseCase
	DraftUC   *draft.UseCase
	AuditUC   *audit.UseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	// Estado de tabla (cualquier usuario, sobre sus propias pantallas)
	views := protected.Group("/view-state/:screen")
	vsHandler := NewViewStateHandler(deps.Views)
	views.Get("/", vsHandler.Get)
	views.Delete("/", vsHandler.Reset)
	views.Put("/page-index", vsHandler.SetPageIndex)
	views.Put("/page-size", vsHandler.SetPageSize)
	views.Put("/sorting", vsHandler.SetSorting)
	views.Put("/filters", vsHandler.SetFilters)
	views.Put("/search", vsHandler.SetSearch)
	views.Put("/branches", vsHandler.SetBranches)
	views.Put("/pagination", vsHandler.SetPagination)
	views.Post("/sort-toggle", vsHandler.ToggleSort)
	views.Post("/clear-filters", vsHandler.ClearFilters)

	// Pré-notas: consulta libre, clasificación fiscal, revisión del aprobador
	prenotes := protected.Group("/prenotes")
	preNoteHandler := NewPreNoteHandler(deps.PreNoteUC)
	prenotes.Get("/", preNoteHandler.List)
	prenotes.Get("/:id", preNoteHandler.GetByID)
	prenotes.Post("/:id/classify", RequireRole(entity.RoleFiscal, entity.RoleBuyer), preNoteHandler.Classify)
	prenotes.Post("/:id/approve", RequireRole(entity.RoleApprover), preNoteHandler.Approve)
	prenotes.Post("/:id/reject", RequireRole(entity.RoleApprover), preNoteHandler.Reject)

	// Doca
	dockGroup := protected.Group("/dock", RequireRole(entity.RoleDock))
	dockHandler := NewDockHandler(deps.DockUC)
	dockGroup.Get("/", dockHandler.List)
	dockGroup.Get("/:id", dockHandler.GetByID)
	dockGroup.Post("/:id/confirm", dockHandler.Confirm)
	dockGroup.Post("/:id/reverse", dockHandler.Reverse)

	// Borradores de pré-nota (comprador)
	drafts := protected.Group("/drafts", RequireRole(entity.RoleBuyer))
	draftHandler := NewDraftHandler(deps.DraftUC)
	drafts.Post("/", draftHandler.Create)
	drafts.Get("/", draftHandler.List)
	drafts.Get("/:id", draftHandler.GetByID)
	drafts.Delete("/:id", draftHandler.Cancel)
	drafts.Post("/:id/reset", draftHandler.Reset)
	drafts.Patch("/:id/header", draftHandler.SetHeader)
	drafts.Post("/:id/items", draftHandler.AddItem)
	drafts.Patch("/:id/items/:index", draftHandler.UpdateItem)
	drafts.Delete("/:id/items/:index", draftHandler.RemoveItem)
	drafts.Get("/:id/next-item-code", draftHandler.NextItemCode)
	drafts.Post("/:id/installments", draftHandler.AddInstallment)
	drafts.Patch("/:id/installments/:index", draftHandler.UpdateInstallment)
	drafts.Delete("/:id/installments/:index", draftHandler.RemoveInstallment)
	drafts.Get("/:id/remaining", draftHandler.Remaining)
	drafts.Post("/:id/attachments", draftHandler.AddAttachment)
	drafts.Delete("/:id/attachments/:index", draftHandler.RemoveAttachment)
	drafts.Post("/:id/validate", draftHandler.Validate)
	drafts.Post("/:id/validate/:section", draftHandler.ValidateSection)
	drafts.Post("/:id/submit", draftHandler.Submit)
	drafts.Post("/:id/import-nfe", draftHandler.ImportNFe)
	drafts.Get("/:id/pdf", draftHandler.PDF)

	// Auditoría
	auditGroup := protected.Group("/audit", RequireRole(entity.RoleAuditor, entity.RoleApprover, entity.RoleFiscal))
	auditHandler := NewAuditHandler(deps.AuditUC)
	auditGroup.Get("/:entity/:id", auditHandler.Timeline)
}
