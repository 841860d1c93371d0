package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest una línea de la venta.
type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"` // cero = usar precio del catálogo
}

// CreateSaleRequest body para POST /api/sales. ExchangeRate es la tasa VES/USD
// capturada al momento de la venta (entrada manual o de la fuente de tasas).
type CreateSaleRequest struct {
	Items        []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Currency     string            `json:"currency" validate:"required,oneof=USD VES"`
	ExchangeRate decimal.Decimal   `json:"exchange_rate"`
	ExpiresAt    *time.Time        `json:"expires_at,omitempty"` // cotización con vencimiento
}

// PaymentEntryRequest un pago por método y moneda.
type PaymentEntryRequest struct {
	Method   string          `json:"method" validate:"required,oneof=cash card transfer mobile"`
	Currency string          `json:"currency" validate:"required,oneof=USD VES"`
	Amount   decimal.Decimal `json:"amount"`
}

// ProcessPaymentRequest body para POST /api/sales/:document_id/payments.
type ProcessPaymentRequest struct {
	Payments []PaymentEntryRequest `json:"payments" validate:"required,min=1,dive"`
}

// SaleResponse salida de un registro de venta (un ítem).
type SaleResponse struct {
	ID                string          `json:"id"`
	DocumentID        string          `json:"document_id"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Total             decimal.Decimal `json:"total"`
	Currency          string          `json:"currency"`
	PaymentStatus     string          `json:"payment_status"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	InventoryAffected bool            `json:"inventory_affected"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
