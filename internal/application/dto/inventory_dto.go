package dto

import "time"

// MovementRequest una línea del lote de movimientos (POST /api/inventory/movements).
// Quantity es delta positivo para ENTRY/EXIT y valor absoluto objetivo (>= 0)
// para ADJUSTMENT.
type MovementRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Type      string `json:"type" validate:"required,oneof=ENTRY EXIT ADJUSTMENT"`
	Quantity  int    `json:"quantity" validate:"min=0"`
	Reason    string `json:"reason" validate:"omitempty,max=500"`
}

// ApplyMovementsRequest body del lote.
type ApplyMovementsRequest struct {
	Movements []MovementRequest `json:"movements" validate:"required,min=1,max=100,dive"`
}

// BatchResultResponse resumen del lote aplicado.
type BatchResultResponse struct {
	Applied int `json:"applied"`
	Pending int `json:"pending"`
	Skipped int `json:"skipped"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	Type        string     `json:"type"`
	Quantity    int        `json:"quantity"`
	PreviousQty int        `json:"previous_qty"`
	NewQty      int        `json:"new_qty"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	CreatedBy   string     `json:"created_by"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	Date        time.Time  `json:"date"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}
