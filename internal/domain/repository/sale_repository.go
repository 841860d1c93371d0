package repository

import (
	"time"

	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// SaleRepository acceso a registros de venta (uno por ítem; comparten DocumentID).
type SaleRepository interface {
	Create(sale *entity.Sale) error
	GetByID(id string) (*entity.Sale, error)
	// GetDocumentForUpdate obtiene todos los ítems de la venta bloqueando las
	// filas (SELECT FOR UPDATE) para serializar pagos concurrentes.
	GetDocumentForUpdate(companyID, documentID string) ([]*entity.Sale, error)
	ListByDocument(companyID, documentID string) ([]*entity.Sale, error)
	Update(sale *entity.Sale) error
	// ListExpirablePending devuelve ventas pending_payment con ExpiresAt
	// vencido (barrido de cotizaciones).
	ListExpirablePending(now time.Time, limit int) ([]*entity.Sale, error)
}
