package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/comercio-pro/internal/application/dto"
	"github.com/tu-usuario/comercio-pro/internal/application/returns"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// ReturnsHandler maneja las peticiones HTTP de devoluciones (protegido).
type ReturnsHandler struct {
	uc *returns.ReturnUseCase
}

// NewReturnsHandler construye el handler.
func NewReturnsHandler(uc *returns.ReturnUseCase) *ReturnsHandler {
	return &ReturnsHandler{uc: uc}
}

// ProcessReturn godoc
// @Summary      Procesar devolución de una venta pagada
// @Description  Emite la nota de crédito, registra la salida de efectivo y
//
//	revierte el inventario en una sola operación atómica. Requiere
//	sesión de caja abierta.
//
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcessReturnRequest  true  "documento original, ítems y motivo"
// @Success      201   {object}  dto.CreditNoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ReturnsHandler) ProcessReturn(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ProcessReturnRequest
	if !parseBody(c, &in) {
		return nil
	}
	items := make([]returns.ReturnItemInput, len(in.Items))
	for i, item := range in.Items {
		items[i] = returns.ReturnItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	note, err := h.uc.ProcessReturn(c.Context(), companyID, userID, in.DocumentID, items, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCreditNoteResponse(note))
}

func toCreditNoteResponse(n *entity.CreditNote) dto.CreditNoteResponse {
	items := make([]dto.CreditNoteItemResponse, len(n.Items))
	for i, item := range n.Items {
		items[i] = dto.CreditNoteItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		}
	}
	return dto.CreditNoteResponse{
		ID:             n.ID,
		Number:         n.Number,
		OriginalSaleID: n.OriginalSaleID,
		Items:          items,
		Subtotal:       n.Subtotal,
		IVA:            n.IVA,
		Total:          n.Total,
		Reason:         n.Reason,
		CreatedAt:      n.CreatedAt,
	}
}
