package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de caja.
const (
	CashTxTypeSale       = "sale"
	CashTxTypeExpense    = "expense"
	CashTxTypeWithdrawal = "withdrawal"
	CashTxTypeReturn     = "return"
)

// PaymentEntry es una línea de pago: cuánto entró (o salió) por un método y
// moneda concretos.
type PaymentEntry struct {
	Method   string          `json:"method"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// CashTransaction es el registro inmutable (append-only) de un evento que
// afecta la caja, atado a una sesión. Las ventas detallan sus pagos por
// método/moneda; gastos, retiros y devoluciones afectan el efectivo de su
// moneda por el monto total.
type CashTransaction struct {
	ID          string
	CompanyID   string
	SessionID   string
	Type        string // sale | expense | withdrawal | return
	ReferenceID string // venta, solicitud o nota de crédito que la originó
	Description string
	Currency    string
	Payments    []PaymentEntry
	TotalAmount decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
}
