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

var _ repository.AuthorizationRepository = (*AuthorizationRepo)(nil)

// AuthorizationRepo implementación de AuthorizationRepository (usable con pool o tx).
type AuthorizationRepo struct {
	q Querier
}

// NewAuthorizationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuthorizationRepository(q Querier) *AuthorizationRepo {
	return &AuthorizationRepo{q: q}
}

const authColumns = `id, company_id, type, amount, currency, reason, status, requested_by, reviewed_by, created_at, reviewed_at`

// Create persiste una solicitud de autorización.
func (r *AuthorizationRepo) Create(request *entity.AuthorizationRequest) error {
	query := `
		INSERT INTO authorization_requests (` + authColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		request.ID, request.CompanyID, request.Type, request.Amount, request.Currency,
		request.Reason, request.Status, request.RequestedBy, nullIfEmpty(request.ReviewedBy),
		request.CreatedAt, request.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("create authorization request: %w", err)
	}
	return nil
}

func scanAuthRequest(row pgx.Row) (*entity.AuthorizationRequest, error) {
	var a entity.AuthorizationRequest
	var reviewedBy *string
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.Type, &a.Amount, &a.Currency, &a.Reason, &a.Status,
		&a.RequestedBy, &reviewedBy, &a.CreatedAt, &a.ReviewedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan authorization request: %w", err)
	}
	if reviewedBy != nil {
		a.ReviewedBy = *reviewedBy
	}
	return &a, nil
}

// GetByID obtiene una solicitud por ID; nil si no existe.
func (r *AuthorizationRepo) GetByID(id string) (*entity.AuthorizationRequest, error) {
	query := `SELECT ` + authColumns + ` FROM authorization_requests WHERE id = $1`
	return scanAuthRequest(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene la solicitud bloqueando la fila: resolverla (aprobar o
// rechazar) ocurre exactamente una vez.
func (r *AuthorizationRepo) GetForUpdate(id string) (*entity.AuthorizationRequest, error) {
	query := `SELECT ` + authColumns + ` FROM authorization_requests WHERE id = $1 FOR UPDATE`
	return scanAuthRequest(r.q.QueryRow(context.Background(), query, id))
}

// Update escribe estado y revisor.
func (r *AuthorizationRepo) Update(request *entity.AuthorizationRequest) error {
	query := `
		UPDATE authorization_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		request.ID, request.Status, nullIfEmpty(request.ReviewedBy), request.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("update authorization request: %w", err)
	}
	return nil
}

// ListPending lista las solicitudes pendientes de la empresa.
func (r *AuthorizationRepo) ListPending(companyID string) ([]*entity.AuthorizationRequest, error) {
	query := `SELECT ` + authColumns + ` FROM authorization_requests WHERE company_id = $1 AND status = $2 ORDER BY created_at`
	return r.list(query, companyID, entity.AuthRequestStatusPending)
}

// ListPendingOlderThan lista, en todas las empresas, las solicitudes
// pendientes creadas antes del corte.
func (r *AuthorizationRepo) ListPendingOlderThan(cutoff time.Time) ([]*entity.AuthorizationRequest, error) {
	query := `SELECT ` + authColumns + ` FROM authorization_requests WHERE status = $1 AND created_at < $2 ORDER BY created_at`
	return r.list(query, entity.AuthRequestStatusPending, cutoff)
}

func (r *AuthorizationRepo) list(query string, args ...any) ([]*entity.AuthorizationRequest, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list authorization requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuthorizationRequest
	for rows.Next() {
		var a entity.AuthorizationRequest
		var reviewedBy *string
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.Type, &a.Amount, &a.Currency, &a.Reason, &a.Status,
			&a.RequestedBy, &reviewedBy, &a.CreatedAt, &a.ReviewedAt,
		); err != nil {
			return nil, fmt.Errorf("scan authorization request: %w", err)
		}
		if reviewedBy != nil {
			a.ReviewedBy = *reviewedBy
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
