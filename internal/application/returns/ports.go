package returns

import (
	"context"
	"time"

	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

// TxRunner transacción para devoluciones: nota de crédito, transacción de caja
// y reversión de inventario se confirman juntas o no se confirma nada.
type TxRunner interface {
	RunReturns(ctx context.Context, fn func(
		noteRepo repository.CreditNoteRepository,
		cashTxRepo repository.CashTransactionRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockLedger entrada in-tx al libro de inventario para restaurar cantidades.
type StockLedger interface {
	RegisterEntryInTx(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		companyID, productID, userID string,
		quantity int,
		reason, referenceID string,
		now time.Time,
	) error
}
