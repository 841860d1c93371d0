package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/comercio-pro/internal/domain"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

// CashSessionRepo implementación de CashSessionRepository (usable con pool o tx).
// Los balances por moneda/método se persisten como JSONB.
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

const sessionColumns = `id, company_id, cashier_id, status, opening_balance, closing_balance, expected_balance, difference, notes, verified_by, opened_at, closed_at, verified_at`

// Create persiste una sesión de caja nueva. El índice único parcial sobre
// company_id (status activo) convierte una carrera de aperturas en
// ErrSessionAlreadyOpen.
func (r *CashSessionRepo) Create(session *entity.CashSession) error {
	opening, err := balancesToJSON(session.OpeningBalance)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO cash_sessions (id, company_id, cashier_id, status, opening_balance, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.q.Exec(context.Background(), query,
		session.ID, session.CompanyID, session.CashierID, session.Status, opening, session.OpenedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionAlreadyOpen
		}
		return fmt.Errorf("create cash session: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (*entity.CashSession, error) {
	var s entity.CashSession
	var opening, closing, expected, difference []byte
	var notes, verifiedBy *string
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.CashierID, &s.Status,
		&opening, &closing, &expected, &difference,
		&notes, &verifiedBy, &s.OpenedAt, &s.ClosedAt, &s.VerifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan cash session: %w", err)
	}
	if s.OpeningBalance, err = balancesFromJSON(opening); err != nil {
		return nil, err
	}
	if s.ClosingBalance, err = balancesFromJSON(closing); err != nil {
		return nil, err
	}
	if s.ExpectedBalance, err = balancesFromJSON(expected); err != nil {
		return nil, err
	}
	if s.Difference, err = balancesFromJSON(difference); err != nil {
		return nil, err
	}
	if notes != nil {
		s.Notes = *notes
	}
	if verifiedBy != nil {
		s.VerifiedBy = *verifiedBy
	}
	return &s, nil
}

// GetByID obtiene una sesión por ID; nil si no existe.
func (r *CashSessionRepo) GetByID(id string) (*entity.CashSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE id = $1`
	return scanSession(r.q.QueryRow(context.Background(), query, id))
}

// GetActive devuelve la sesión open o pending_verification de la empresa.
func (r *CashSessionRepo) GetActive(companyID string) (*entity.CashSession, error) {
	query := `
		SELECT ` + sessionColumns + ` FROM cash_sessions
		WHERE company_id = $1 AND status IN ($2, $3)`
	return scanSession(r.q.QueryRow(context.Background(), query,
		companyID, entity.SessionStatusOpen, entity.SessionStatusPendingVerification))
}

// GetActiveForUpdate igual que GetActive pero bloqueando la fila, para que la
// verificación check-then-create de la apertura corra serializada.
func (r *CashSessionRepo) GetActiveForUpdate(companyID string) (*entity.CashSession, error) {
	query := `
		SELECT ` + sessionColumns + ` FROM cash_sessions
		WHERE company_id = $1 AND status IN ($2, $3)
		FOR UPDATE`
	return scanSession(r.q.QueryRow(context.Background(), query,
		companyID, entity.SessionStatusOpen, entity.SessionStatusPendingVerification))
}

// Update escribe el estado y los balances de cierre/verificación.
func (r *CashSessionRepo) Update(session *entity.CashSession) error {
	closing, err := balancesToJSON(session.ClosingBalance)
	if err != nil {
		return err
	}
	expected, err := balancesToJSON(session.ExpectedBalance)
	if err != nil {
		return err
	}
	difference, err := balancesToJSON(session.Difference)
	if err != nil {
		return err
	}
	query := `
		UPDATE cash_sessions
		SET status = $2, closing_balance = $3, expected_balance = $4, difference = $5,
		    notes = $6, verified_by = $7, closed_at = $8, verified_at = $9
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		session.ID, session.Status, closing, expected, difference,
		session.Notes, nullIfEmpty(session.VerifiedBy), session.ClosedAt, session.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update cash session: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
