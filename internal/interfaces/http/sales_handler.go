package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/comercio-pro/internal/application/dto"
	"github.com/tu-usuario/comercio-pro/internal/application/sales"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// SalesHandler maneja las peticiones HTTP del ciclo de vida de ventas (protegido).
type SalesHandler struct {
	uc *sales.SaleUseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.SaleUseCase) *SalesHandler {
	return &SalesHandler{uc: uc}
}

// CreateSale godoc
// @Summary      Crear venta (pendiente de pago)
// @Description  Crea un registro por ítem con estado pending_payment. No toca
//
//	el inventario: el stock se descuenta al liquidar el pago.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "ítems, moneda y tasa de cambio"
// @Success      201   {array}   dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) CreateSale(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateSaleRequest
	if !parseBody(c, &in) {
		return nil
	}
	items := make([]sales.SaleItemInput, len(in.Items))
	for i, item := range in.Items {
		items[i] = sales.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	records, err := h.uc.CreateSale(c.Context(), companyID, userID, sales.CreateSaleInput{
		Items:        items,
		Currency:     in.Currency,
		ExchangeRate: in.ExchangeRate,
		ExpiresAt:    in.ExpiresAt,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponses(records))
}

// ProcessPayment godoc
// @Summary      Registrar pagos sobre una venta
// @Description  Requiere sesión de caja abierta. Al completarse el total, la
//
//	venta pasa a paid y el stock se descuenta una sola vez.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        document_id  path  string                     true  "ID del documento de venta"
// @Param        body         body  dto.ProcessPaymentRequest  true  "pagos por método y moneda"
// @Success      200   {array}   dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{document_id}/payments [post]
func (h *SalesHandler) ProcessPayment(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ProcessPaymentRequest
	if !parseBody(c, &in) {
		return nil
	}
	payments := make([]sales.PaymentEntry, len(in.Payments))
	for i, p := range in.Payments {
		payments[i] = sales.PaymentEntry{Method: p.Method, Currency: p.Currency, Amount: p.Amount}
	}
	records, err := h.uc.ProcessPayment(c.Context(), companyID, userID, c.Params("document_id"), payments)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSaleResponses(records))
}

// GetSale godoc
// @Summary      Consultar los ítems de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        document_id  path  string  true  "ID del documento de venta"
// @Success      200  {array}   dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{document_id} [get]
func (h *SalesHandler) GetSale(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	records, err := h.uc.ListByDocument(c.Context(), companyID, c.Params("document_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSaleResponses(records))
}

func toSaleResponses(records []*entity.Sale) []dto.SaleResponse {
	out := make([]dto.SaleResponse, len(records))
	for i, s := range records {
		out[i] = dto.SaleResponse{
			ID:                s.ID,
			DocumentID:        s.DocumentID,
			ProductID:         s.ProductID,
			ProductName:       s.ProductName,
			Quantity:          s.Quantity,
			UnitPrice:         s.UnitPrice,
			Total:             s.Total,
			Currency:          s.Currency,
			PaymentStatus:     s.PaymentStatus,
			PaidAmount:        s.PaidAmount,
			RemainingAmount:   s.RemainingAmount,
			InventoryAffected: s.InventoryAffected,
			ExpiresAt:         s.ExpiresAt,
			CreatedAt:         s.CreatedAt,
		}
	}
	return out
}
