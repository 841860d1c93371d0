package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

var _ repository.CreditNoteRepository = (*CreditNoteRepo)(nil)

// CreditNoteRepo implementación de CreditNoteRepository (usable con pool o tx).
type CreditNoteRepo struct {
	q Querier
}

// NewCreditNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditNoteRepository(q Querier) *CreditNoteRepo {
	return &CreditNoteRepo{q: q}
}

const creditNoteColumns = `id, company_id, original_sale_id, number, items, subtotal, iva, total, reason, created_by, created_at`

// Create persiste una nota de crédito.
func (r *CreditNoteRepo) Create(note *entity.CreditNote) error {
	items, err := json.Marshal(note.Items)
	if err != nil {
		return fmt.Errorf("marshal credit note items: %w", err)
	}
	query := `
		INSERT INTO credit_notes (` + creditNoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(context.Background(), query,
		note.ID, note.CompanyID, note.OriginalSaleID, note.Number, items,
		note.Subtotal, note.IVA, note.Total, note.Reason, note.CreatedBy, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create credit note: %w", err)
	}
	return nil
}

// GetByID obtiene una nota por ID; nil si no existe.
func (r *CreditNoteRepo) GetByID(id string) (*entity.CreditNote, error) {
	query := `SELECT ` + creditNoteColumns + ` FROM credit_notes WHERE id = $1`
	var n entity.CreditNote
	var items []byte
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&n.ID, &n.CompanyID, &n.OriginalSaleID, &n.Number, &items,
		&n.Subtotal, &n.IVA, &n.Total, &n.Reason, &n.CreatedBy, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit note: %w", err)
	}
	if err := json.Unmarshal(items, &n.Items); err != nil {
		return nil, fmt.Errorf("unmarshal credit note items: %w", err)
	}
	return &n, nil
}

// CountCreatedOn cuenta las notas de la empresa creadas el día indicado
// (consecutivo diario NC-).
func (r *CreditNoteRepo) CountCreatedOn(companyID string, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	query := `SELECT count(*) FROM credit_notes WHERE company_id = $1 AND created_at >= $2 AND created_at < $3`
	var count int
	if err := r.q.QueryRow(context.Background(), query, companyID, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("count credit notes: %w", err)
	}
	return count, nil
}

// ListByOriginalSale lista las notas emitidas contra un documento de venta.
func (r *CreditNoteRepo) ListByOriginalSale(companyID, originalSaleID string) ([]*entity.CreditNote, error) {
	query := `SELECT ` + creditNoteColumns + ` FROM credit_notes WHERE company_id = $1 AND original_sale_id = $2 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, companyID, originalSaleID)
	if err != nil {
		return nil, fmt.Errorf("list credit notes by sale: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditNote
	for rows.Next() {
		var n entity.CreditNote
		var items []byte
		if err := rows.Scan(
			&n.ID, &n.CompanyID, &n.OriginalSaleID, &n.Number, &items,
			&n.Subtotal, &n.IVA, &n.Total, &n.Reason, &n.CreatedBy, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credit note: %w", err)
		}
		if err := json.Unmarshal(items, &n.Items); err != nil {
			return nil, fmt.Errorf("unmarshal credit note items: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// ListByCompany lista notas de crédito de la empresa, más recientes primero.
func (r *CreditNoteRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.CreditNote, error) {
	query := `SELECT ` + creditNoteColumns + ` FROM credit_notes WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list credit notes: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditNote
	for rows.Next() {
		var n entity.CreditNote
		var items []byte
		if err := rows.Scan(
			&n.ID, &n.CompanyID, &n.OriginalSaleID, &n.Number, &items,
			&n.Subtotal, &n.IVA, &n.Total, &n.Reason, &n.CreatedBy, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credit note: %w", err)
		}
		if err := json.Unmarshal(items, &n.Items); err != nil {
			return nil, fmt.Errorf("unmarshal credit note items: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
