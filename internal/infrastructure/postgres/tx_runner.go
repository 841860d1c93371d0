package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/comercio-pro/internal/application/authz"
	"github.com/tu-usuario/comercio-pro/internal/application/cash"
	"github.com/tu-usuario/comercio-pro/internal/application/inventory"
	"github.com/tu-usuario/comercio-pro/internal/application/returns"
	"github.com/tu-usuario/comercio-pro/internal/application/sales"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos de transacción de cada caso de uso.
var (
	_ inventory.TxRunner = (*TxRunner)(nil)
	_ sales.TxRunner     = (*TxRunner)(nil)
	_ cash.TxRunner      = (*TxRunner)(nil)
	_ authz.TxRunner     = (*TxRunner)(nil)
	_ returns.TxRunner   = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL: es la
// primitiva de "escritura multi-documento atómica" del motor. Cada método
// entrega al callback repositorios atados a la misma tx y hace Commit si el
// callback retorna nil, Rollback en caso contrario.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunInventory transacción del libro de inventario (producto + movimiento).
func (r *TxRunner) RunInventory(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewMovementRepository(q), NewProductRepository(q))
	})
}

// RunSales transacción del ciclo de ventas (pago + inventario + caja).
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	cashTxRepo repository.CashTransactionRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewSaleRepository(q), NewMovementRepository(q), NewProductRepository(q), NewCashTransactionRepository(q))
	})
}

// RunCash transacción de la caja (sesión + ledger de transacciones).
func (r *TxRunner) RunCash(ctx context.Context, fn func(
	sessionRepo repository.CashSessionRepository,
	cashTxRepo repository.CashTransactionRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewCashSessionRepository(q), NewCashTransactionRepository(q))
	})
}

// RunAuthz transacción de autorizaciones (solicitud + transacción de caja).
func (r *TxRunner) RunAuthz(ctx context.Context, fn func(
	authRepo repository.AuthorizationRepository,
	cashTxRepo repository.CashTransactionRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewAuthorizationRepository(q), NewCashTransactionRepository(q))
	})
}

// RunReturns transacción de devoluciones (nota de crédito + caja + inventario).
func (r *TxRunner) RunReturns(ctx context.Context, fn func(
	noteRepo repository.CreditNoteRepository,
	cashTxRepo repository.CashTransactionRepository,
	saleRepo repository.SaleRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewCreditNoteRepository(q), NewCashTransactionRepository(q), NewSaleRepository(q), NewMovementRepository(q), NewProductRepository(q))
	})
}
