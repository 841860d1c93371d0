package repository

import (
	"time"

	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// AuthorizationRepository acceso a solicitudes de autorización de gastos/retiros.
type AuthorizationRepository interface {
	Create(request *entity.AuthorizationRequest) error
	GetByID(id string) (*entity.AuthorizationRequest, error)
	// GetForUpdate bloquea la solicitud para resolverla (aprobar/rechazar)
	// exactamente una vez.
	GetForUpdate(id string) (*entity.AuthorizationRequest, error)
	Update(request *entity.AuthorizationRequest) error
	ListPending(companyID string) ([]*entity.AuthorizationRequest, error)
	// ListPendingOlderThan lista, en todas las empresas, las solicitudes
	// pendientes creadas antes del corte (reporte del worker).
	ListPendingOlderThan(cutoff time.Time) ([]*entity.AuthorizationRequest, error)
}
