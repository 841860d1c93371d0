package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/comercio-pro/internal/application/authz"
	"github.com/tu-usuario/comercio-pro/internal/application/dto"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// AuthzHandler maneja las peticiones HTTP de gastos, retiros y su flujo de
// autorización (protegido).
type AuthzHandler struct {
	uc *authz.AuthorizationUseCase
}

// NewAuthzHandler construye el handler.
func NewAuthzHandler(uc *authz.AuthorizationUseCase) *AuthzHandler {
	return &AuthzHandler{uc: uc}
}

// RequestExpense godoc
// @Summary      Registrar gasto de caja
// @Description  Por defecto crea una solicitud pendiente sin efecto de caja.
//
//	Un admin puede pasar requires_auth=false para el gasto directo
//	(exige sesión de caja abierta).
//
// @Tags         authz
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExpenseRequest  true  "monto, moneda, motivo"
// @Success      201   {object}  dto.AuthorizationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/expenses [post]
func (h *AuthzHandler) RequestExpense(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ExpenseRequest
	if !parseBody(c, &in) {
		return nil
	}
	request, cashTx, err := h.uc.RequestExpense(c.Context(), companyID, userID, GetRole(c), authz.ExpenseInput{
		Amount:       in.Amount,
		Currency:     in.Currency,
		Reason:       in.Reason,
		RequiresAuth: in.RequiresAuth,
	})
	if err != nil {
		return respondError(c, err)
	}
	if request != nil {
		return c.Status(fiber.StatusCreated).JSON(toAuthorizationResponse(request))
	}
	// Gasto directo de admin: no hay solicitud, la transacción ya quedó escrita.
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": cashTx.ID,
		"message":        "gasto registrado",
	})
}

// RequestWithdrawal godoc
// @Summary      Solicitar retiro de caja (siempre requiere autorización)
// @Tags         authz
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WithdrawalRequest  true  "monto, moneda, motivo"
// @Success      201   {object}  dto.AuthorizationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cash/withdrawals [post]
func (h *AuthzHandler) RequestWithdrawal(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.WithdrawalRequest
	if !parseBody(c, &in) {
		return nil
	}
	request, err := h.uc.RequestWithdrawal(c.Context(), companyID, userID, in.Amount, in.Currency, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAuthorizationResponse(request))
}

// ApproveRequest godoc
// @Summary      Aprobar solicitud pendiente (solo admin)
// @Description  Exige sesión de caja abierta: el estado y la transacción de
//
//	caja se escriben en la misma operación atómica.
//
// @Tags         authz
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cash/authorizations/{id}/approve [post]
func (h *AuthzHandler) ApproveRequest(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	cashTx, err := h.uc.Approve(c.Context(), companyID, GetUserID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"transaction_id": cashTx.ID,
		"message":        "solicitud aprobada",
	})
}

// RejectRequest godoc
// @Summary      Rechazar solicitud pendiente (solo admin)
// @Tags         authz
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cash/authorizations/{id}/reject [post]
func (h *AuthzHandler) RejectRequest(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Reject(c.Context(), companyID, GetUserID(c), GetRole(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "solicitud rechazada"})
}

// ListPendingRequests godoc
// @Summary      Solicitudes de autorización pendientes
// @Tags         authz
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.AuthorizationResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/cash/authorizations/pending [get]
func (h *AuthzHandler) ListPendingRequests(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	requests, err := h.uc.ListPending(c.Context(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AuthorizationResponse, len(requests))
	for i, r := range requests {
		out[i] = toAuthorizationResponse(r)
	}
	return c.JSON(fiber.Map{
		"total":    len(out),
		"requests": out,
	})
}

func toAuthorizationResponse(r *entity.AuthorizationRequest) dto.AuthorizationResponse {
	return dto.AuthorizationResponse{
		ID:          r.ID,
		Type:        r.Type,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Reason:      r.Reason,
		Status:      r.Status,
		RequestedBy: r.RequestedBy,
		ReviewedBy:  r.ReviewedBy,
		CreatedAt:   r.CreatedAt,
		ReviewedAt:  r.ReviewedAt,
	}
}
