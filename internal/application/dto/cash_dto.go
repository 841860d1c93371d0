package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalancesDTO montos por moneda y método: {"USD":{"cash":100}}.
type BalancesDTO map[string]map[string]decimal.Decimal

// OpenSessionRequest body para POST /api/cash/sessions.
type OpenSessionRequest struct {
	OpeningBalance BalancesDTO `json:"opening_balance" validate:"required"`
}

// CloseSessionRequest body para POST /api/cash/sessions/close.
// ClosingBalance es el conteo físico declarado por el cajero.
type CloseSessionRequest struct {
	ClosingBalance BalancesDTO `json:"closing_balance" validate:"required"`
}

// VerifySessionRequest body para POST /api/cash/sessions/verify (solo admin).
type VerifySessionRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

// SessionResponse salida de una sesión de caja.
type SessionResponse struct {
	ID              string      `json:"id"`
	CashierID       string      `json:"cashier_id"`
	Status          string      `json:"status"`
	OpeningBalance  BalancesDTO `json:"opening_balance"`
	ClosingBalance  BalancesDTO `json:"closing_balance,omitempty"`
	ExpectedBalance BalancesDTO `json:"expected_balance,omitempty"`
	Difference      BalancesDTO `json:"difference,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	OpenedAt        time.Time   `json:"opened_at"`
	ClosedAt        *time.Time  `json:"closed_at,omitempty"`
	VerifiedAt      *time.Time  `json:"verified_at,omitempty"`
}

// ExpenseRequest body para POST /api/cash/expenses.
// RequiresAuth nil equivale a true: el gasto queda pendiente de aprobación.
type ExpenseRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency" validate:"required,oneof=USD VES"`
	Reason       string          `json:"reason" validate:"required,max=500"`
	RequiresAuth *bool           `json:"requires_auth,omitempty"`
}

// WithdrawalRequest body para POST /api/cash/withdrawals (siempre requiere
// autorización).
type WithdrawalRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"required,oneof=USD VES"`
	Reason   string          `json:"reason" validate:"required,max=500"`
}

// AuthorizationResponse salida de una solicitud de autorización.
type AuthorizationResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Reason      string          `json:"reason"`
	Status      string          `json:"status"`
	RequestedBy string          `json:"requested_by"`
	ReviewedBy  string          `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ReviewedAt  *time.Time      `json:"reviewed_at,omitempty"`
}
