package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una venta.
const (
	PaymentStatusPending = "pending_payment"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
	PaymentStatusExpired = "expired"
)

// PaymentEpsilon: una venta se considera pagada cuando el saldo restante es
// menor o igual a un centavo.
var PaymentEpsilon = decimal.NewFromFloat(0.01)

// Sale es un registro a nivel de ítem: una venta con N productos produce N
// registros que comparten DocumentID y los metadatos de pago.
// InventoryAffected pasa de false a true una sola vez, exactamente cuando
// RemainingAmount llega a <= PaymentEpsilon; es la guarda que asegura que el
// stock se descuenta a lo sumo una vez por venta.
type Sale struct {
	ID                string
	CompanyID         string
	DocumentID        string // agrupa los ítems de una misma venta
	ProductID         string
	ProductName       string
	Quantity          int
	UnitPrice         decimal.Decimal
	TaxRate           decimal.Decimal
	Total             decimal.Decimal // (UnitPrice * Quantity) * (1 + TaxRate)
	Currency          string          // moneda de denominación de la venta
	ExchangeRate      decimal.Decimal // VES por USD al momento de la venta
	PaymentStatus     string          // pending_payment | partial | paid | expired
	PaidAmount        decimal.Decimal
	RemainingAmount   decimal.Decimal
	InventoryAffected bool
	ExpiresAt         *time.Time // cotizaciones: vencen sin tocar stock
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
