package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos y estados de solicitudes de autorización.
const (
	AuthRequestTypeExpense    = "expense"
	AuthRequestTypeWithdrawal = "withdrawal"

	AuthRequestStatusPending  = "pending"
	AuthRequestStatusApproved = "approved"
	AuthRequestStatusRejected = "rejected"
)

// AuthorizationRequest es la compuerta de aprobación de un administrador para
// gastos y retiros de caja. Los estados approved/rejected son terminales: una
// solicitud aprobada produce exactamente una transacción de caja (en la misma
// escritura atómica) y una rechazada no produce ninguna.
type AuthorizationRequest struct {
	ID          string
	CompanyID   string
	Type        string // expense | withdrawal
	Amount      decimal.Decimal
	Currency    string
	Reason      string
	Status      string // pending | approved | rejected
	RequestedBy string
	ReviewedBy  string
	CreatedAt   time.Time
	ReviewedAt  *time.Time
}

// IsTerminal indica si la solicitud ya fue resuelta.
func (r *AuthorizationRequest) IsTerminal() bool {
	return r.Status == AuthRequestStatusApproved || r.Status == AuthRequestStatusRejected
}
