package repository

import "github.com/tu-usuario/comercio-pro/internal/domain/entity"

// ProductRepository acceso a productos del catálogo.
// GetByID devuelve nil sin error si el producto no existe.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto bloqueando la fila (SELECT FOR UPDATE)
	// para serializar las escrituras de cantidad. Solo tiene sentido dentro
	// de una transacción.
	GetForUpdate(id string) (*entity.Product, error)
	// UpdateStock escribe cantidad y estado derivado. Único punto de mutación
	// de stock; lo invoca exclusivamente el libro de inventario.
	UpdateStock(id string, quantity int, status string) error
	List(companyID string, limit, offset int) ([]*entity.Product, error)
}
