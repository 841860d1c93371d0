package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock derivados de la cantidad. Los umbrales (0 y 10) son
// política del negocio, no configuración.
const (
	StockStatusInStock    = "in_stock"
	StockStatusLowStock   = "low_stock"
	StockStatusOutOfStock = "out_of_stock"
)

// Product representa un producto o SKU del catálogo. Quantity y Status se
// mutan únicamente a través del libro de inventario (movimientos aprobados);
// ningún otro componente escribe estos campos.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	Quantity    int             // invariante: >= 0
	Price       decimal.Decimal // precio de venta unitario
	TaxRate     decimal.Decimal // IVA: 0 o 0.16
	Location    string
	Status      string // in_stock | low_stock | out_of_stock (derivado)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
