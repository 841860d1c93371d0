package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnItemRequest una línea devuelta (producto y cantidad).
type ReturnItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// ProcessReturnRequest body para POST /api/returns.
type ProcessReturnRequest struct {
	DocumentID string              `json:"document_id" validate:"required,uuid"`
	Items      []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason     string              `json:"reason" validate:"required,max=500"`
}

// CreditNoteItemResponse línea de la nota de crédito.
type CreditNoteItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CreditNoteResponse salida de una nota de crédito.
type CreditNoteResponse struct {
	ID             string                   `json:"id"`
	Number         string                   `json:"number"`
	OriginalSaleID string                   `json:"original_sale_id"`
	Items          []CreditNoteItemResponse `json:"items"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	IVA            decimal.Decimal          `json:"iva"`
	Total          decimal.Decimal          `json:"total"`
	Reason         string                   `json:"reason"`
	CreatedAt      time.Time                `json:"created_at"`
}
