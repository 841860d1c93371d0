package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/comercio-pro/internal/application/cash"
	"github.com/tu-usuario/comercio-pro/internal/application/dto"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// CashHandler maneja las peticiones HTTP de sesiones de caja (protegido).
type CashHandler struct {
	uc *cash.CashSessionUseCase
}

// NewCashHandler construye el handler.
func NewCashHandler(uc *cash.CashSessionUseCase) *CashHandler {
	return &CashHandler{uc: uc}
}

// OpenSession godoc
// @Summary      Abrir sesión de caja
// @Description  Falla con 409 si ya hay una sesión activa (open o
//
//	pending_verification) en la empresa.
//
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenSessionRequest  true  "balances de apertura por moneda y método"
// @Success      201   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/sessions [post]
func (h *CashHandler) OpenSession(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.OpenSessionRequest
	if !parseBody(c, &in) {
		return nil
	}
	session, err := h.uc.OpenSession(c.Context(), companyID, userID, entity.Balances(in.OpeningBalance))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSessionResponse(session))
}

// CloseSession godoc
// @Summary      Cerrar sesión de caja (conteo declarado)
// @Description  Calcula el balance esperado replicando las transacciones de la
//
//	sesión y la deja en pending_verification; solo un admin la
//	finaliza con verify.
//
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseSessionRequest  true  "conteo físico declarado"
// @Success      200   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/close [post]
func (h *CashHandler) CloseSession(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CloseSessionRequest
	if !parseBody(c, &in) {
		return nil
	}
	session, err := h.uc.CloseSession(c.Context(), companyID, userID, entity.Balances(in.ClosingBalance))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSessionResponse(session))
}

// VerifySession godoc
// @Summary      Verificar y finalizar sesión de caja (solo admin)
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifySessionRequest  true  "notas de verificación"
// @Success      200   {object}  dto.SessionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/verify [post]
func (h *CashHandler) VerifySession(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.VerifySessionRequest
	if !parseBody(c, &in) {
		return nil
	}
	session, err := h.uc.VerifySession(c.Context(), companyID, GetUserID(c), GetRole(c), in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSessionResponse(session))
}

// ActiveSession godoc
// @Summary      Sesión de caja activa de la empresa
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/active [get]
func (h *CashHandler) ActiveSession(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	session, err := h.uc.ActiveSession(c.Context(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay sesión activa"})
	}
	return c.JSON(toSessionResponse(session))
}

func toSessionResponse(s *entity.CashSession) dto.SessionResponse {
	return dto.SessionResponse{
		ID:              s.ID,
		CashierID:       s.CashierID,
		Status:          s.Status,
		OpeningBalance:  dto.BalancesDTO(s.OpeningBalance),
		ClosingBalance:  dto.BalancesDTO(s.ClosingBalance),
		ExpectedBalance: dto.BalancesDTO(s.ExpectedBalance),
		Difference:      dto.BalancesDTO(s.Difference),
		Notes:           s.Notes,
		OpenedAt:        s.OpenedAt,
		ClosedAt:        s.ClosedAt,
		VerifiedAt:      s.VerifiedAt,
	}
}
