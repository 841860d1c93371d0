package sales

import (
	"context"
	"time"

	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

// TxRunner transacción para el ciclo de vida de ventas: el pago, el giro de
// inventario y la transacción de caja se escriben como una sola operación.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		cashTxRepo repository.CashTransactionRepository,
	) error) error
}

// StockLedger es la entrada in-tx al libro de inventario: la salida por venta
// se registra dentro de la transacción del pago.
type StockLedger interface {
	RegisterExitInTx(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		companyID, productID, userID string,
		quantity int,
		reason, referenceID string,
		now time.Time,
	) error
}
