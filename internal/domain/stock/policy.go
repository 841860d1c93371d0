package stock

import (
	"github.com/tu-usuario/comercio-pro/internal/domain"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// Umbral de stock bajo (servicio de dominio, constante de política).
// out_of_stock sii quantity == 0; low_stock sii 0 < quantity < 10.
const LowStockThreshold = 10

// Classify deriva el estado de stock a partir de la cantidad.
func Classify(quantity int) string {
	switch {
	case quantity == 0:
		return entity.StockStatusOutOfStock
	case quantity < LowStockThreshold:
		return entity.StockStatusLowStock
	default:
		return entity.StockStatusInStock
	}
}

// NextQuantity aplica la fórmula del libro de inventario sobre la cantidad
// actual del producto:
//
//	ENTRY      -> current + delta
//	EXIT       -> current - delta
//	ADJUSTMENT -> delta (valor absoluto objetivo, no incremento)
//
// Devuelve ErrInvalidInput para tipos desconocidos o deltas fuera de rango y
// ErrInsufficientStock si una salida dejaría la cantidad negativa.
func NextQuantity(movementType string, current, delta int) (int, error) {
	switch movementType {
	case entity.MovementTypeEntry:
		if delta <= 0 {
			return 0, domain.ErrInvalidInput
		}
		return current + delta, nil
	case entity.MovementTypeExit:
		if delta <= 0 {
			return 0, domain.ErrInvalidInput
		}
		if delta > current {
			return 0, domain.ErrInsufficientStock
		}
		return current - delta, nil
	case entity.MovementTypeAdjustment:
		if delta < 0 {
			return 0, domain.ErrInvalidInput
		}
		return delta, nil
	default:
		return 0, domain.ErrInvalidInput
	}
}
