package inventory

import (
	"context"

	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que producto y movimiento se
// escriban como una sola operación atómica.
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
