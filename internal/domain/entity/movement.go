package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeEntry      = "ENTRY"      // entrada
	MovementTypeExit       = "EXIT"       // salida
	MovementTypeAdjustment = "ADJUSTMENT" // ajuste absoluto (fija la cantidad)
)

// Estados del flujo de aprobación de movimientos.
// MovementStatusLegacy representa registros históricos anteriores al flujo de
// aprobación (sin status en el documento original): cuentan como historia ya
// aplicada y nunca vuelven a aplicarse.
const (
	MovementStatusPending  = "pending"
	MovementStatusApproved = "approved"
	MovementStatusRejected = "rejected"
	MovementStatusLegacy   = ""
)

// Movement es el registro de auditoría inmutable de un cambio de stock.
// Una vez aprobado es historia append-only; la única mutación permitida es
// fijar PreviousQty/NewQty al momento de aprobar un registro creado en pending.
type Movement struct {
	ID          string
	CompanyID   string
	ProductID   string
	Type        string // ENTRY | EXIT | ADJUSTMENT
	Quantity    int    // ENTRY/EXIT: delta > 0; ADJUSTMENT: cantidad objetivo >= 0
	PreviousQty int
	NewQty      int
	Status      string // pending | approved | rejected | "" (legacy)
	Reason      string
	CreatedBy   string
	ApprovedBy  string
	Date        time.Time
	CreatedAt   time.Time
	ApprovedAt  *time.Time
}

// AppliesToStock indica si este movimiento ya afectó (o afectará) el stock.
// Los registros legacy sin status cuentan como aplicados.
func (m *Movement) AppliesToStock() bool {
	return m.Status == MovementStatusApproved || m.Status == MovementStatusLegacy
}
