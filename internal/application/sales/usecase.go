package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/comercio-pro/internal/domain"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

// SaleUseCase gestiona el ciclo de vida de una venta:
// pending_payment -> {partial, paid, expired}, partial -> paid.
// La venta NO toca el inventario al crearse; la salida de stock se dispara
// exactamente una vez, en la misma transacción del pago que la deja en paid.
type SaleUseCase struct {
	txRunner    TxRunner
	ledger      StockLedger
	productRepo repository.ProductRepository
	sessionRepo repository.CashSessionRepository
	saleRepo    repository.SaleRepository
	log         *logger.Logger
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner TxRunner,
	ledger StockLedger,
	productRepo repository.ProductRepository,
	sessionRepo repository.CashSessionRepository,
	saleRepo repository.SaleRepository,
	log *logger.Logger,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		productRepo: productRepo,
		sessionRepo: sessionRepo,
		saleRepo:    saleRepo,
		log:         log,
	}
}

// SaleItemInput una línea del checkout.
type SaleItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal // cero = precio del catálogo
}

// CreateSaleInput entrada para CreateSale.
type CreateSaleInput struct {
	Items        []SaleItemInput
	Currency     string
	ExchangeRate decimal.Decimal // VES por USD, capturada como escalar
	ExpiresAt    *time.Time      // cotización con vencimiento
}

// PaymentEntry un pago por método y moneda.
type PaymentEntry struct {
	Method   string
	Currency string
	Amount   decimal.Decimal
}

// CreateSale persiste un registro por ítem con paymentStatus=pending_payment e
// inventoryAffected=false. No invoca el libro de inventario.
func (uc *SaleUseCase) CreateSale(ctx context.Context, companyID, userID string, in CreateSaleInput) ([]*entity.Sale, error) {
	if companyID == "" || userID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Currency != entity.CurrencyUSD && in.Currency != entity.CurrencyVES {
		return nil, domain.ErrInvalidInput
	}

	// Validar productos y resolver precios (solo lectura, fuera de la tx).
	type line struct {
		product   *entity.Product
		quantity  int
		unitPrice decimal.Decimal
	}
	lines := make([]line, 0, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || product.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		unitPrice := item.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.Price
		}
		if unitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		lines = append(lines, line{product: product, quantity: item.Quantity, unitPrice: unitPrice})
	}

	now := time.Now()
	documentID := uuid.New().String()
	records := make([]*entity.Sale, 0, len(lines))

	var docTotal decimal.Decimal
	for _, l := range lines {
		subtotal := l.unitPrice.Mul(decimal.NewFromInt(int64(l.quantity)))
		total := subtotal.Add(subtotal.Mul(l.product.TaxRate))
		docTotal = docTotal.Add(total)
		records = append(records, &entity.Sale{
			ID:              uuid.New().String(),
			CompanyID:       companyID,
			DocumentID:      documentID,
			ProductID:       l.product.ID,
			ProductName:     l.product.Name,
			Quantity:        l.quantity,
			UnitPrice:       l.unitPrice,
			TaxRate:         l.product.TaxRate,
			Total:           total,
			Currency:        in.Currency,
			ExchangeRate:    in.ExchangeRate,
			PaymentStatus:   entity.PaymentStatusPending,
			PaidAmount:      decimal.Zero,
			ExpiresAt:       in.ExpiresAt,
			CreatedBy:       userID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	// Los ítems comparten los metadatos de pago: el restante inicial es el
	// total del documento, replicado en cada registro.
	for _, r := range records {
		r.RemainingAmount = docTotal
	}

	err := uc.txRunner.RunSales(ctx, func(
		saleRepo repository.SaleRepository,
		_ repository.MovementRepository,
		_ repository.ProductRepository,
		_ repository.CashTransactionRepository,
	) error {
		for _, r := range records {
			if err := saleRepo.Create(r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ProcessPayment registra pagos sobre una venta. Requiere una sesión de caja
// abierta. En una sola transacción: bloquea los ítems de la venta, suma los
// pagos (normalizados a la moneda de la venta con la tasa capturada),
// recalcula remaining = max(0, total - paid) y fija el estado. La PRIMERA vez
// que la venta queda paid, voltea inventoryAffected y registra la salida de
// inventario de cada ítem más la transacción de caja 'sale' — todo en la misma
// escritura lógica, de modo que el stock se descuenta exactamente una vez sin
// importar cuántos pagos parciales reciba la venta.
func (uc *SaleUseCase) ProcessPayment(ctx context.Context, companyID, userID, documentID string, payments []PaymentEntry) ([]*entity.Sale, error) {
	if companyID == "" || documentID == "" || len(payments) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, p := range payments {
		if !p.Amount.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}

	session, err := uc.sessionRepo.GetActive(companyID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Status != entity.SessionStatusOpen {
		return nil, domain.ErrNoOpenSession
	}

	now := time.Now()
	var updated []*entity.Sale

	err = uc.txRunner.RunSales(ctx, func(
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		cashTxRepo repository.CashTransactionRepository,
	) error {
		items, err := saleRepo.GetDocumentForUpdate(companyID, documentID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrNotFound
		}
		head := items[0]
		switch head.PaymentStatus {
		case entity.PaymentStatusPending, entity.PaymentStatusPartial:
			// pagable
		default:
			return domain.ErrConflict
		}

		paymentTotal, err := normalizeTotal(payments, head.Currency, head.ExchangeRate)
		if err != nil {
			return err
		}

		var docTotal decimal.Decimal
		for _, item := range items {
			docTotal = docTotal.Add(item.Total)
		}
		paid := head.PaidAmount.Add(paymentTotal)
		remaining := docTotal.Sub(paid)
		if remaining.LessThan(decimal.Zero) {
			remaining = decimal.Zero
		}
		status := entity.PaymentStatusPartial
		settled := remaining.LessThanOrEqual(entity.PaymentEpsilon)
		if settled {
			status = entity.PaymentStatusPaid
			remaining = decimal.Zero
		}
		firstSettlement := settled && !head.InventoryAffected

		for _, item := range items {
			item.PaidAmount = paid
			item.RemainingAmount = remaining
			item.PaymentStatus = status
			item.UpdatedAt = now
			if firstSettlement {
				item.InventoryAffected = true
			}
			if err := saleRepo.Update(item); err != nil {
				return err
			}
		}

		if firstSettlement {
			for _, item := range items {
				if err := uc.ledger.RegisterExitInTx(
					movRepo, productRepo,
					companyID, item.ProductID, userID,
					item.Quantity,
					"venta", documentID,
					now,
				); err != nil {
					return err
				}
			}
		}

		entries := make([]entity.PaymentEntry, len(payments))
		for i, p := range payments {
			entries[i] = entity.PaymentEntry{Method: p.Method, Currency: p.Currency, Amount: p.Amount}
		}
		cashTx := &entity.CashTransaction{
			ID:          uuid.New().String(),
			CompanyID:   companyID,
			SessionID:   session.ID,
			Type:        entity.CashTxTypeSale,
			ReferenceID: documentID,
			Description: "pago de venta",
			Currency:    head.Currency,
			Payments:    entries,
			TotalAmount: paymentTotal,
			CreatedBy:   userID,
			CreatedAt:   now,
		}
		if err := cashTxRepo.Create(cashTx); err != nil {
			return err
		}
		updated = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ExpireQuotes barre las ventas pending_payment con vencimiento cumplido y las
// pasa a expired sin tocar el inventario. Lo ejecuta el worker periódico.
func (uc *SaleUseCase) ExpireQuotes(ctx context.Context, now time.Time) (int, error) {
	const batchSize = 200
	expired := 0
	stale, err := uc.saleRepo.ListExpirablePending(now, batchSize)
	if err != nil {
		return 0, err
	}
	for _, sale := range stale {
		sale.PaymentStatus = entity.PaymentStatusExpired
		sale.UpdatedAt = now
		if err := uc.saleRepo.Update(sale); err != nil {
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		uc.log.Info().Int("expired", expired).Msg("cotizaciones vencidas")
	}
	return expired, nil
}

// ListByDocument devuelve los ítems de una venta.
func (uc *SaleUseCase) ListByDocument(ctx context.Context, companyID, documentID string) ([]*entity.Sale, error) {
	items, err := uc.saleRepo.ListByDocument(companyID, documentID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return items, nil
}

// normalizeTotal suma los pagos convertidos a la moneda de la venta con la
// tasa capturada al crearla (VES por USD).
func normalizeTotal(payments []PaymentEntry, saleCurrency string, exchangeRate decimal.Decimal) (decimal.Decimal, error) {
	var total decimal.Decimal
	for _, p := range payments {
		if p.Currency == saleCurrency {
			total = total.Add(p.Amount)
			continue
		}
		if !exchangeRate.GreaterThan(decimal.Zero) {
			return decimal.Zero, domain.ErrInvalidInput
		}
		if saleCurrency == entity.CurrencyUSD && p.Currency == entity.CurrencyVES {
			total = total.Add(p.Amount.Div(exchangeRate))
			continue
		}
		if saleCurrency == entity.CurrencyVES && p.Currency == entity.CurrencyUSD {
			total = total.Add(p.Amount.Mul(exchangeRate))
			continue
		}
		return decimal.Zero, domain.ErrInvalidInput
	}
	return total, nil
}
