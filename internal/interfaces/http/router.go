package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/comercio-pro/internal/application/auth"
	"github.com/tu-usuario/comercio-pro/internal/application/authz"
	"github.com/tu-usuario/comercio-pro/internal/application/cash"
	"github.com/tu-usuario/comercio-pro/internal/application/inventory"
	"github.com/tu-usuario/comercio-pro/internal/application/returns"
	"github.com/tu-usuario/comercio-pro/internal/application/sales"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockLedgerUC *inventory.StockLedgerUseCase
	SaleUC        *sales.SaleUseCase
	CashUC        *cash.CashSessionUseCase
	AuthzUC       *authz.AuthorizationUseCase
	ReturnsUC     *returns.ReturnUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
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
	adminOnly := RequireRole(entity.RoleAdmin)

	// Inventario: lote de movimientos y compuerta de aprobación (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockLedgerUC)
	invGroup.Post("/movements", inventoryHandler.ApplyMovements)
	invGroup.Get("/movements/pending", inventoryHandler.ListPendingMovements)
	invGroup.Post("/movements/:id/approve", adminOnly, inventoryHandler.ApproveMovement)
	invGroup.Post("/movements/:id/reject", adminOnly, inventoryHandler.RejectMovement)
	invGroup.Get("/products/:id/movements", inventoryHandler.ListProductMovements)

	// Ventas (protegido)
	salesGroup := protected.Group("/sales")
	salesHandler := NewSalesHandler(deps.SaleUC)
	salesGroup.Post("/", salesHandler.CreateSale)
	salesGroup.Get("/:document_id", salesHandler.GetSale)
	salesGroup.Post("/:document_id/payments", salesHandler.ProcessPayment)

	// Caja: sesiones, gastos, retiros y autorizaciones (protegido)
	cashGroup := protected.Group("/cash")
	cashHandler := NewCashHandler(deps.CashUC)
	cashGroup.Post("/sessions", cashHandler.OpenSession)
	cashGroup.Get("/sessions/active", cashHandler.ActiveSession)
	cashGroup.Post("/sessions/close", cashHandler.CloseSession)
	cashGroup.Post("/sessions/verify", adminOnly, cashHandler.VerifySession)

	authzHandler := NewAuthzHandler(deps.AuthzUC)
	cashGroup.Post("/expenses", authzHandler.RequestExpense)
	cashGroup.Post("/withdrawals", authzHandler.RequestWithdrawal)
	cashGroup.Get("/authorizations/pending", authzHandler.ListPendingRequests)
	cashGroup.Post("/authorizations/:id/approve", adminOnly, authzHandler.ApproveRequest)
	cashGroup.Post("/authorizations/:id/reject", adminOnly, authzHandler.RejectRequest)

	// Devoluciones (protegido)
	returnsHandler := NewReturnsHandler(deps.ReturnsUC)
	protected.Post("/returns", returnsHandler.ProcessReturn)
}
