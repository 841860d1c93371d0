package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, company_id, document_id, product_id, product_name, quantity, unit_price, tax_rate, total, currency, exchange_rate, payment_status, paid_amount, remaining_amount, inventory_affected, expires_at, created_by, created_at, updated_at`

// Create persiste un registro de venta (un ítem).
func (r *SaleRepo) Create(sale *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.CompanyID, sale.DocumentID, sale.ProductID, sale.ProductName,
		sale.Quantity, sale.UnitPrice, sale.TaxRate, sale.Total, sale.Currency,
		sale.ExchangeRate, sale.PaymentStatus, sale.PaidAmount, sale.RemainingAmount,
		sale.InventoryAffected, sale.ExpiresAt, sale.CreatedBy, sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.DocumentID, &s.ProductID, &s.ProductName,
		&s.Quantity, &s.UnitPrice, &s.TaxRate, &s.Total, &s.Currency,
		&s.ExchangeRate, &s.PaymentStatus, &s.PaidAmount, &s.RemainingAmount,
		&s.InventoryAffected, &s.ExpiresAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	return &s, nil
}

// GetByID obtiene un registro de venta; nil si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return scanSale(r.q.QueryRow(context.Background(), query, id))
}

// GetDocumentForUpdate obtiene los ítems de la venta bloqueando las filas
// (SELECT FOR UPDATE) para serializar pagos concurrentes sobre el documento.
func (r *SaleRepo) GetDocumentForUpdate(companyID, documentID string) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE company_id = $1 AND document_id = $2 ORDER BY created_at FOR UPDATE`
	return r.list(query, companyID, documentID)
}

// ListByDocument lista los ítems de la venta sin bloqueo.
func (r *SaleRepo) ListByDocument(companyID, documentID string) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE company_id = $1 AND document_id = $2 ORDER BY created_at`
	return r.list(query, companyID, documentID)
}

// Update escribe los metadatos de pago de un registro.
func (r *SaleRepo) Update(sale *entity.Sale) error {
	query := `
		UPDATE sales
		SET payment_status = $2, paid_amount = $3, remaining_amount = $4, inventory_affected = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.PaymentStatus, sale.PaidAmount, sale.RemainingAmount,
		sale.InventoryAffected, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	return nil
}

// ListExpirablePending lista ventas pending_payment con vencimiento cumplido.
func (r *SaleRepo) ListExpirablePending(now time.Time, limit int) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + ` FROM sales
		WHERE payment_status = $1 AND expires_at IS NOT NULL AND expires_at < $2
		ORDER BY expires_at LIMIT $3`
	return r.list(query, entity.PaymentStatusPending, now, limit)
}

func (r *SaleRepo) list(query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.DocumentID, &s.ProductID, &s.ProductName,
			&s.Quantity, &s.UnitPrice, &s.TaxRate, &s.Total, &s.Currency,
			&s.ExchangeRate, &s.PaymentStatus, &s.PaidAmount, &s.RemainingAmount,
			&s.InventoryAffected, &s.ExpiresAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
