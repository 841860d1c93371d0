package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/comercio-pro/internal/application/dto"
	"github.com/tu-usuario/comercio-pro/internal/application/inventory"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP del libro de inventario y la
// compuerta de aprobación de movimientos (protegido).
type InventoryHandler struct {
	uc *inventory.StockLedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockLedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// ApplyMovements godoc
// @Summary      Aplicar lote de movimientos de inventario
// @Description  Un admin aplica el stock de inmediato; bodeguero/vendedor dejan
//
//	el movimiento pendiente de aprobación. Productos inexistentes se
//	descartan sin abortar el lote.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementsRequest  true  "lote de movimientos"
// @Success      200   {object}  dto.BatchResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) ApplyMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementsRequest
	if !parseBody(c, &in) {
		return nil
	}
	batch := make([]inventory.MovementInput, len(in.Movements))
	for i, m := range in.Movements {
		batch[i] = inventory.MovementInput{
			ProductID: m.ProductID,
			Type:      m.Type,
			Quantity:  m.Quantity,
			Reason:    m.Reason,
		}
	}
	result, err := h.uc.ApplyMovements(c.Context(), companyID, userID, GetRole(c), batch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BatchResultResponse{
		Applied: result.Applied,
		Pending: result.Pending,
		Skipped: result.Skipped,
	})
}

// ApproveMovement godoc
// @Summary      Aprobar un movimiento pendiente (solo admin)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/approve [post]
func (h *InventoryHandler) ApproveMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	err := h.uc.ApproveMovement(c.Context(), companyID, GetUserID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "movimiento aprobado"})
}

// RejectMovement godoc
// @Summary      Rechazar un movimiento pendiente (solo admin)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/reject [post]
func (h *InventoryHandler) RejectMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	err := h.uc.RejectMovement(c.Context(), companyID, GetUserID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "movimiento rechazado"})
}

// ListPendingMovements godoc
// @Summary      Movimientos pendientes de aprobación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.MovementResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/pending [get]
func (h *InventoryHandler) ListPendingMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	movements, err := h.uc.ListPending(c.Context(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(movements),
		"movements": toMovementResponses(movements),
	})
}

// ListProductMovements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "máx. resultados (default 20)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ListProductMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.uc.ListByProduct(c.Context(), companyID, c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(movements),
		"movements": toMovementResponses(movements),
	})
}

func toMovementResponses(movements []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = dto.MovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			Type:        m.Type,
			Quantity:    m.Quantity,
			PreviousQty: m.PreviousQty,
			NewQty:      m.NewQty,
			Status:      m.Status,
			Reason:      m.Reason,
			CreatedBy:   m.CreatedBy,
			ApprovedBy:  m.ApprovedBy,
			Date:        m.Date,
			ApprovedAt:  m.ApprovedAt,
		}
	}
	return out
}
