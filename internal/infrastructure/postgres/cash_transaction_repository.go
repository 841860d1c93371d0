package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

var _ repository.CashTransactionRepository = (*CashTransactionRepo)(nil)

// CashTransactionRepo implementación de CashTransactionRepository (usable con
// pool o tx). El ledger es append-only: solo INSERT y SELECT.
type CashTransactionRepo struct {
	q Querier
}

// NewCashTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashTransactionRepository(q Querier) *CashTransactionRepo {
	return &CashTransactionRepo{q: q}
}

// Create persiste una transacción de caja.
func (r *CashTransactionRepo) Create(tx *entity.CashTransaction) error {
	var payments []byte
	if len(tx.Payments) > 0 {
		data, err := json.Marshal(tx.Payments)
		if err != nil {
			return fmt.Errorf("marshal payments: %w", err)
		}
		payments = data
	}
	query := `
		INSERT INTO cash_transactions (id, company_id, session_id, type, reference_id, description, currency, payments, total_amount, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.CompanyID, tx.SessionID, tx.Type, nullIfEmpty(tx.ReferenceID),
		tx.Description, tx.Currency, payments, tx.TotalAmount, tx.CreatedBy, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create cash transaction: %w", err)
	}
	return nil
}

// ListBySession lista las transacciones de una sesión en orden de creación.
func (r *CashTransactionRepo) ListBySession(sessionID string) ([]*entity.CashTransaction, error) {
	query := `
		SELECT id, company_id, session_id, type, reference_id, description, currency, payments, total_amount, created_by, created_at
		FROM cash_transactions WHERE session_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashTransaction
	for rows.Next() {
		var t entity.CashTransaction
		var referenceID *string
		var payments []byte
		if err := rows.Scan(
			&t.ID, &t.CompanyID, &t.SessionID, &t.Type, &referenceID,
			&t.Description, &t.Currency, &payments, &t.TotalAmount, &t.CreatedBy, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cash transaction: %w", err)
		}
		if referenceID != nil {
			t.ReferenceID = *referenceID
		}
		if len(payments) > 0 {
			if err := json.Unmarshal(payments, &t.Payments); err != nil {
				return nil, fmt.Errorf("unmarshal payments: %w", err)
			}
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
