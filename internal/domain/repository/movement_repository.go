package repository

import (
	"time"

	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// MovementRepository acceso al historial de movimientos de inventario.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	// GetForUpdate bloquea la fila del movimiento para el flujo de aprobación
	// (evita aprobar/rechazar dos veces en paralelo).
	GetForUpdate(id string) (*entity.Movement, error)
	// UpdateStatus fija el estado y, al aprobar, PreviousQty/NewQty. Única
	// mutación permitida sobre un movimiento ya creado.
	UpdateStatus(movement *entity.Movement) error
	ListByProduct(productID string, limit, offset int) ([]*entity.Movement, error)
	ListPending(companyID string) ([]*entity.Movement, error)
	// ListPendingOlderThan lista, en todas las empresas, los pendientes creados
	// antes del corte (reporte de solicitudes estancadas del worker).
	ListPendingOlderThan(cutoff time.Time) ([]*entity.Movement, error)
}
