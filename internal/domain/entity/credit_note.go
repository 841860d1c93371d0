package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditNoteItem es una línea devuelta de la venta original.
type CreditNoteItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CreditNote es el documento inmutable emitido al revertir (total o
// parcialmente) una venta pagada. Number sigue el consecutivo diario
// "NC-" + secuencia con ceros a la izquierda.
type CreditNote struct {
	ID             string
	CompanyID      string
	OriginalSaleID string // DocumentID de la venta original
	Number         string
	Items          []CreditNoteItem
	Subtotal       decimal.Decimal
	IVA            decimal.Decimal
	Total          decimal.Decimal
	Reason         string
	CreatedBy      string
	CreatedAt      time.Time
}
