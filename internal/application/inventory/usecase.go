package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/comercio-pro/internal/domain"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
	"github.com/tu-usuario/comercio-pro/internal/domain/stock"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

// StockLedgerUseCase aplica movimientos de inventario (ENTRY, EXIT, ADJUSTMENT)
// y opera la compuerta de aprobación para actores no administradores.
// Toda mutación de Quantity/Status de un producto pasa por aquí: cada
// aplicación bloquea la fila del producto (SELECT FOR UPDATE) y escribe
// producto + movimiento en una sola transacción.
type StockLedgerUseCase struct {
	txRunner    TxRunner
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
	log         *logger.Logger
}

// NewStockLedgerUseCase construye el caso de uso. movRepo y productRepo se usan
// solo para lecturas (listados); toda escritura pasa por txRunner.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	log *logger.Logger,
) *StockLedgerUseCase {
	return &StockLedgerUseCase{txRunner: txRunner, movRepo: movRepo, productRepo: productRepo, log: log}
}

// MovementInput una línea del lote de movimientos.
type MovementInput struct {
	ProductID string
	Type      string // ENTRY | EXIT | ADJUSTMENT
	Quantity  int
	Reason    string
}

// BatchResult resumen de un lote aplicado.
type BatchResult struct {
	Applied int // aplicados al stock (actor admin)
	Pending int // registrados en pending, sin tocar stock
	Skipped int // descartados (producto inexistente)
}

// ApplyMovements procesa un lote de movimientos. El lote completo se valida
// antes de escribir: una línea malformada rechaza el lote entero sin efecto.
// Ya validado, cada línea corre en su propia transacción: un producto
// inexistente se descarta con log warn y el resto del lote continúa
// (tolerancia deliberada a referencias obsoletas del catálogo).
//
// Según el rol del actor:
//   - admin: el movimiento nace approved y muta el producto de inmediato.
//   - bodeguero/vendedor: el movimiento nace pending; el stock solo cambia
//     cuando un admin lo aprueba (ApproveMovement).
func (uc *StockLedgerUseCase) ApplyMovements(ctx context.Context, companyID, userID, role string, batch []MovementInput) (BatchResult, error) {
	if companyID == "" || userID == "" || len(batch) == 0 {
		return BatchResult{}, domain.ErrInvalidInput
	}
	// Todo el lote se valida antes de abrir la primera transacción: un lote
	// malformado se rechaza sin haber escrito nada.
	for _, in := range batch {
		if err := validateInput(in); err != nil {
			return BatchResult{}, err
		}
	}

	var result BatchResult
	autoApprove := role == entity.RoleAdmin
	now := time.Now()

	for _, in := range batch {
		err := uc.txRunner.RunInventory(ctx, func(
			movRepo repository.MovementRepository,
			productRepo repository.ProductRepository,
		) error {
			product, err := productRepo.GetForUpdate(in.ProductID)
			if err != nil {
				return err
			}
			if product == nil || product.CompanyID != companyID {
				// Producto inexistente: se descarta la línea, no el lote.
				uc.log.Warn().
					Str("product_id", in.ProductID).
					Str("company_id", companyID).
					Str("type", in.Type).
					Msg("movimiento descartado: producto no encontrado")
				result.Skipped++
				return nil
			}

			mov := &entity.Movement{
				ID:        uuid.New().String(),
				CompanyID: companyID,
				ProductID: in.ProductID,
				Type:      in.Type,
				Quantity:  in.Quantity,
				Status:    entity.MovementStatusPending,
				Reason:    in.Reason,
				CreatedBy: userID,
				Date:      now,
				CreatedAt: now,
			}

			if !autoApprove {
				// Solo el registro de auditoría; el producto no se toca.
				if err := movRepo.Create(mov); err != nil {
					return err
				}
				result.Pending++
				return nil
			}

			newQty, err := stock.NextQuantity(in.Type, product.Quantity, in.Quantity)
			if err != nil {
				return err
			}
			mov.Status = entity.MovementStatusApproved
			mov.ApprovedBy = userID
			mov.ApprovedAt = &now
			mov.PreviousQty = product.Quantity
			mov.NewQty = newQty

			if err := productRepo.UpdateStock(product.ID, newQty, stock.Classify(newQty)); err != nil {
				return err
			}
			if err := movRepo.Create(mov); err != nil {
				return err
			}
			result.Applied++
			return nil
		})
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// ApproveMovement aplica un movimiento pendiente. Recalcula PreviousQty/NewQty
// desde la cantidad ACTUAL del producto (no la capturada al solicitar) bajo el
// mismo bloqueo de fila, y escribe producto + movimiento en una transacción.
// Un movimiento se aplica al stock a lo sumo una vez: solo la transición
// pending -> approved muta el producto.
func (uc *StockLedgerUseCase) ApproveMovement(ctx context.Context, companyID, approverID, approverRole, movementID string) error {
	if approverRole != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	return uc.txRunner.RunInventory(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		mov, err := movRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if mov == nil || mov.CompanyID != companyID {
			return domain.ErrNotFound
		}
		if mov.Status != entity.MovementStatusPending {
			return domain.ErrConflict
		}
		product, err := productRepo.GetForUpdate(mov.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		newQty, err := stock.NextQuantity(mov.Type, product.Quantity, mov.Quantity)
		if err != nil {
			return err
		}
		now := time.Now()
		mov.Status = entity.MovementStatusApproved
		mov.ApprovedBy = approverID
		mov.ApprovedAt = &now
		mov.PreviousQty = product.Quantity
		mov.NewQty = newQty

		if err := productRepo.UpdateStock(product.ID, newQty, stock.Classify(newQty)); err != nil {
			return err
		}
		return movRepo.UpdateStatus(mov)
	})
}

// RejectMovement marca un movimiento pendiente como rechazado. Nunca muta stock.
func (uc *StockLedgerUseCase) RejectMovement(ctx context.Context, companyID, approverID, approverRole, movementID string) error {
	if approverRole != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	return uc.txRunner.RunInventory(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		mov, err := movRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if mov == nil || mov.CompanyID != companyID {
			return domain.ErrNotFound
		}
		if mov.Status != entity.MovementStatusPending {
			return domain.ErrConflict
		}
		now := time.Now()
		mov.Status = entity.MovementStatusRejected
		mov.ApprovedBy = approverID
		mov.ApprovedAt = &now
		return movRepo.UpdateStatus(mov)
	})
}

// RegisterExitInTx registra una salida usando los repositorios del caller
// (misma transacción). Lo invocan el gestor de ventas al liquidar una venta y
// el procesador de devoluciones (como entrada, RegisterEntryInTx).
// referenceID es el documento que lo origina (venta o nota de crédito).
func (uc *StockLedgerUseCase) RegisterExitInTx(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	companyID, productID, userID string,
	quantity int,
	reason, referenceID string,
	now time.Time,
) error {
	return uc.registerInTx(movRepo, productRepo, entity.MovementTypeExit, companyID, productID, userID, quantity, reason, referenceID, now)
}

// RegisterEntryInTx registra una entrada en la transacción del caller
// (reversión de inventario de una devolución).
func (uc *StockLedgerUseCase) RegisterEntryInTx(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	companyID, productID, userID string,
	quantity int,
	reason, referenceID string,
	now time.Time,
) error {
	return uc.registerInTx(movRepo, productRepo, entity.MovementTypeEntry, companyID, productID, userID, quantity, reason, referenceID, now)
}

func (uc *StockLedgerUseCase) registerInTx(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	movementType, companyID, productID, userID string,
	quantity int,
	reason, referenceID string,
	now time.Time,
) error {
	product, err := productRepo.GetForUpdate(productID)
	if err != nil {
		return err
	}
	if product == nil || product.CompanyID != companyID {
		return domain.ErrNotFound
	}
	prevQty := product.Quantity
	newQty, err := stock.NextQuantity(movementType, prevQty, quantity)
	if err != nil {
		return err
	}
	if err := productRepo.UpdateStock(product.ID, newQty, stock.Classify(newQty)); err != nil {
		return err
	}
	mov := &entity.Movement{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ProductID:   productID,
		Type:        movementType,
		Quantity:    quantity,
		PreviousQty: prevQty,
		NewQty:      newQty,
		Status:      entity.MovementStatusApproved,
		Reason:      reason + " " + referenceID,
		CreatedBy:   userID,
		ApprovedBy:  userID,
		Date:        now,
		CreatedAt:   now,
		ApprovedAt:  &now,
	}
	return movRepo.Create(mov)
}

// ListPending devuelve los movimientos pendientes de aprobación de la empresa.
func (uc *StockLedgerUseCase) ListPending(ctx context.Context, companyID string) ([]*entity.Movement, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListPending(companyID)
}

// ListByProduct devuelve el historial de movimientos de un producto de la
// empresa, más reciente primero.
func (uc *StockLedgerUseCase) ListByProduct(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.Movement, error) {
	if companyID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return uc.movRepo.ListByProduct(productID, limit, offset)
}

func validateInput(in MovementInput) error {
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.MovementTypeEntry, entity.MovementTypeExit:
		if in.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeAdjustment:
		if in.Quantity < 0 {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}
