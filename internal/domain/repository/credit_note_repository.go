package repository

import (
	"time"

	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// CreditNoteRepository acceso a notas de crédito.
type CreditNoteRepository interface {
	Create(note *entity.CreditNote) error
	GetByID(id string) (*entity.CreditNote, error)
	// CountCreatedOn cuenta las notas de la empresa creadas el día indicado.
	// Alimenta el consecutivo diario "NC-" (count + 1); ver la nota del
	// procesador de devoluciones sobre concurrencia del consecutivo.
	CountCreatedOn(companyID string, day time.Time) (int, error)
	// ListByOriginalSale lista las notas emitidas contra un documento de venta.
	// Sostiene el tope acumulado de unidades devueltas por producto.
	ListByOriginalSale(companyID, originalSaleID string) ([]*entity.CreditNote, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.CreditNote, error)
}
